package hierarchy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/commissions/internal/models"
)

func record(id, parentID any, revenue any) models.PartnerRecord {
	return models.PartnerRecord{ID: id, ParentID: parentID, MonthlyRevenue: revenue}
}

func named(name string) *string {
	return &name
}

func TestBuild(t *testing.T) {
	t.Run("links children in input order", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{
			record(1, nil, 0),
			record(3, 1, 100),
			record(2, 1, 200),
			record(4, 3, 300),
		})
		require.NoError(t, err)

		assert.Equal(t, 4, h.Len())
		assert.Equal(t, []int64{1, 3, 2, 4}, h.IDs())
		assert.Equal(t, []int64{3, 2}, h.Children(1))
		assert.Equal(t, []int64{4}, h.Children(3))
		assert.Empty(t, h.Children(4))
		assert.Equal(t, []int64{1}, h.Roots())
	})

	t.Run("tolerates forward references to parents", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{
			record(2, 1, 100),
			record(1, nil, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, h.Children(1))
	})

	t.Run("permits multiple roots", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{
			record(1, nil, 0),
			record(2, nil, 0),
			record(3, 2, 10),
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, h.Roots())
	})

	t.Run("defaults partner name", func(t *testing.T) {
		rec := record(1, nil, 0)
		h, err := Build([]models.PartnerRecord{rec, {ID: 2, Name: named("Ada"), MonthlyRevenue: 1}})
		require.NoError(t, err)

		p, ok := h.Partner(1)
		require.True(t, ok)
		assert.Equal(t, "Partner 1", p.Name)

		p, ok = h.Partner(2)
		require.True(t, ok)
		assert.Equal(t, "Ada", p.Name)
	})

	t.Run("parses revenue from text without float error", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{
			record(1, nil, json.Number("1234.56")),
			record(2, nil, "0.1"),
			record(3, nil, 0.1),
		})
		require.NoError(t, err)

		p, _ := h.Partner(1)
		assert.True(t, p.MonthlyRevenue.Equal(decimal.RequireFromString("1234.56")))
		p, _ = h.Partner(2)
		assert.True(t, p.MonthlyRevenue.Equal(decimal.RequireFromString("0.1")))
		p, _ = h.Partner(3)
		assert.True(t, p.MonthlyRevenue.Equal(decimal.RequireFromString("0.1")))
	})

	t.Run("accepts json numbers as ids", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{
			record(json.Number("1"), nil, 0),
			record(json.Number("2"), json.Number("1"), 0),
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, h.Children(1))
	})

	t.Run("returned partners are copies", func(t *testing.T) {
		h, err := Build([]models.PartnerRecord{record(1, nil, 0), record(2, 1, 0)})
		require.NoError(t, err)

		p, _ := h.Partner(1)
		p.Children[0] = 42
		kids := h.Children(1)
		kids[0] = 43

		assert.Equal(t, []int64{2}, h.Children(1))
	})
}

func TestBuild_errors(t *testing.T) {
	tests := []struct {
		name    string
		records []models.PartnerRecord
		err     error
		message string
	}{
		{
			name:    "string id",
			records: []models.PartnerRecord{record("ID", nil, 1000)},
			err:     ErrInvalidPartnerID,
			message: "invalid partner ID: ID",
		},
		{
			name:    "float id",
			records: []models.PartnerRecord{record(1.5, nil, 1000)},
			err:     ErrInvalidPartnerID,
		},
		{
			name:    "fractional json number id",
			records: []models.PartnerRecord{record(json.Number("1.0"), nil, 1000)},
			err:     ErrInvalidPartnerID,
		},
		{
			name:    "missing id",
			records: []models.PartnerRecord{record(nil, nil, 1000)},
			err:     ErrInvalidPartnerID,
		},
		{
			name:    "boolean id",
			records: []models.PartnerRecord{record(true, nil, 1000)},
			err:     ErrInvalidPartnerID,
		},
		{
			name:    "string parent id",
			records: []models.PartnerRecord{record(1, "2", 1000)},
			err:     ErrInvalidParentID,
			message: "invalid parent ID for partner 1",
		},
		{
			name: "duplicate id",
			records: []models.PartnerRecord{
				record(1, nil, 1000),
				record(1, nil, 2000),
			},
			err:     ErrDuplicatePartnerID,
			message: "duplicate partner ID: 1",
		},
		{
			name:    "parent not found",
			records: []models.PartnerRecord{record(2, 999, 1000)},
			err:     ErrParentNotFound,
			message: "parent not found: parent 999 for partner 2",
		},
		{
			name:    "non numeric revenue",
			records: []models.PartnerRecord{record(1, nil, "lots")},
			err:     ErrInvalidRevenue,
		},
		{
			name:    "missing revenue",
			records: []models.PartnerRecord{record(1, nil, nil)},
			err:     ErrInvalidRevenue,
		},
		{
			name:    "negative revenue",
			records: []models.PartnerRecord{record(1, nil, -10)},
			err:     ErrInvalidRevenue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Build(tt.records)
			require.Error(t, err)
			require.Nil(t, h)
			require.ErrorIs(t, err, tt.err)
			if tt.message != "" {
				require.EqualError(t, err, tt.message)
			}
		})
	}
}

func TestBuild_cycles(t *testing.T) {
	tests := []struct {
		name    string
		records []models.PartnerRecord
		path    []int64
	}{
		{
			name: "direct cycle",
			records: []models.PartnerRecord{
				record(1, 2, 1000),
				record(2, 1, 2000),
			},
			path: []int64{1, 2, 1},
		},
		{
			name: "indirect cycle",
			records: []models.PartnerRecord{
				record(1, 3, 1000),
				record(2, 1, 2000),
				record(3, 2, 3000),
			},
			path: []int64{1, 3, 2, 1},
		},
		{
			name: "self parent",
			records: []models.PartnerRecord{
				record(5, 5, 0),
			},
			path: []int64{5, 5},
		},
		{
			name: "cycle entered from an acyclic tail",
			records: []models.PartnerRecord{
				record(10, nil, 0),
				record(11, 10, 0),
				record(4, 2, 0),
				record(2, 3, 0),
				record(3, 2, 0),
			},
			path: []int64{2, 3, 2},
		},
		{
			name: "cycle reported before missing parent",
			records: []models.PartnerRecord{
				record(7, 999, 0),
				record(1, 2, 0),
				record(2, 1, 0),
			},
			path: []int64{1, 2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Build(tt.records)
			require.Nil(t, h)
			require.ErrorIs(t, err, ErrCycleDetected)

			var cycleErr *CycleError
			require.True(t, errors.As(err, &cycleErr))
			require.Equal(t, tt.path, cycleErr.Path)
		})
	}

	t.Run("message names the full path", func(t *testing.T) {
		_, err := Build([]models.PartnerRecord{record(1, 2, 0), record(2, 1, 0)})
		require.EqualError(t, err, "cycle detected in partner hierarchy: 1 -> 2 -> 1")
	})

	t.Run("detected whichever member is listed first", func(t *testing.T) {
		orders := [][]models.PartnerRecord{
			{record(1, 3, 0), record(2, 1, 0), record(3, 2, 0)},
			{record(2, 1, 0), record(3, 2, 0), record(1, 3, 0)},
			{record(3, 2, 0), record(1, 3, 0), record(2, 1, 0)},
		}
		for _, records := range orders {
			_, err := Build(records)
			require.ErrorIs(t, err, ErrCycleDetected)
		}
	})
}

func TestBuild_orderIndependence(t *testing.T) {
	a, err := Build([]models.PartnerRecord{
		record(1, nil, 0),
		record(2, 1, 100),
		record(3, 2, 200),
	})
	require.NoError(t, err)

	b, err := Build([]models.PartnerRecord{
		record(3, 2, 200),
		record(1, nil, 0),
		record(2, 1, 100),
	})
	require.NoError(t, err)

	for _, id := range a.IDs() {
		pa, _ := a.Partner(id)
		pb, ok := b.Partner(id)
		require.True(t, ok)
		assert.Equal(t, pa.ParentID, pb.ParentID)
		assert.True(t, pa.MonthlyRevenue.Equal(pb.MonthlyRevenue))
		assert.ElementsMatch(t, pa.Children, pb.Children)
	}
}

func TestHierarchy_depth(t *testing.T) {
	h, err := Build([]models.PartnerRecord{
		record(4, 3, 0),
		record(1, nil, 0),
		record(2, 1, 0),
		record(3, 2, 0),
		record(9, nil, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, h.Depth(1))
	assert.Equal(t, 1, h.Depth(2))
	assert.Equal(t, 3, h.Depth(4))
	assert.Equal(t, 0, h.Depth(9))
	assert.Equal(t, 3, h.MaxDepth())
}

func TestHierarchy_depths(t *testing.T) {
	h, err := Build([]models.PartnerRecord{
		record(4, 3, 0),
		record(1, nil, 0),
		record(2, 1, 0),
		record(3, 2, 0),
		record(9, nil, 0),
	})
	require.NoError(t, err)

	depths := h.Depths()
	require.Len(t, depths, 5)
	for _, id := range h.IDs() {
		assert.Equal(t, h.Depth(id), depths[id], "partner %d", id)
	}

	t.Run("long chain", func(t *testing.T) {
		const n = 20000
		records := make([]models.PartnerRecord, 0, n)
		records = append(records, record(1, nil, 0))
		for id := 2; id <= n; id++ {
			records = append(records, record(id, id-1, 0))
		}
		h, err := Build(records)
		require.NoError(t, err)

		depths := h.Depths()
		require.Equal(t, n-1, depths[n])
		require.Equal(t, n/2-1, depths[n/2])
		require.Equal(t, n-1, h.MaxDepth())
	})
}
