// Package hierarchy validates flat partner records and links them into a forest.
//
// A Hierarchy is built in three passes: every record is indexed, the parent
// chains are checked for cycles, and only then are children wired to their
// parents. Any failure aborts the build and no Hierarchy is returned.
package hierarchy

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/wolfeidau/commissions/internal/models"
)

// Hierarchy is an immutable index of partners keyed by id.
type Hierarchy struct {
	partners map[int64]*models.Partner
	order    []int64 // insertion order, as declared in the input
}

// Build validates records and returns the linked hierarchy.
func Build(records []models.PartnerRecord) (*Hierarchy, error) {
	h := &Hierarchy{
		partners: make(map[int64]*models.Partner, len(records)),
		order:    make([]int64, 0, len(records)),
	}

	for _, rec := range records {
		p, err := newPartner(rec)
		if err != nil {
			return nil, err
		}
		if _, exists := h.partners[p.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePartnerID, p.ID)
		}
		h.partners[p.ID] = p
		h.order = append(h.order, p.ID)
	}

	// Cycles are reported before any parent is mutated.
	if err := h.detectCycles(); err != nil {
		return nil, err
	}

	for _, id := range h.order {
		p := h.partners[id]
		if p.ParentID == nil {
			continue
		}
		parent, ok := h.partners[*p.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: parent %d for partner %d", ErrParentNotFound, *p.ParentID, id)
		}
		parent.Children = append(parent.Children, id)
	}

	return h, nil
}

func newPartner(rec models.PartnerRecord) (*models.Partner, error) {
	id, ok := asInt64(rec.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPartnerID, rec.ID)
	}

	p := &models.Partner{
		ID:   id,
		Name: models.DefaultPartnerName(id),
	}

	if rec.ParentID != nil {
		pid, ok := asInt64(rec.ParentID)
		if !ok {
			return nil, fmt.Errorf("%w for partner %d", ErrInvalidParentID, id)
		}
		p.ParentID = &pid
	}

	if rec.Name != nil {
		p.Name = *rec.Name
	}

	revenue, ok := asDecimal(rec.MonthlyRevenue)
	if !ok || revenue.IsNegative() {
		return nil, fmt.Errorf("%w: partner %d: %v", ErrInvalidRevenue, id, rec.MonthlyRevenue)
	}
	p.MonthlyRevenue = revenue

	return p, nil
}

// detectCycles traces the ancestor chain of every partner in insertion order.
// Partners whose chain is already known to terminate are skipped on later
// traces; this never alters the path reported for the first cyclic partner.
func (h *Hierarchy) detectCycles() error {
	acyclic := make(map[int64]bool, len(h.partners))

	for _, start := range h.order {
		var path []int64
		seen := make(map[int64]int)

		current, ok := start, true
		for ok && !acyclic[current] {
			if idx, dup := seen[current]; dup {
				cycle := append(slices.Clone(path[idx:]), current)
				return &CycleError{Path: cycle}
			}
			seen[current] = len(path)
			path = append(path, current)
			current, ok = h.parentOf(current)
		}

		for _, id := range path {
			acyclic[id] = true
		}
	}

	return nil
}

// parentOf returns the parent id of a known partner. Unknown ids end the chain;
// link wiring reports them as missing parents.
func (h *Hierarchy) parentOf(id int64) (int64, bool) {
	p, ok := h.partners[id]
	if !ok || p.ParentID == nil {
		return 0, false
	}
	return *p.ParentID, true
}

// Len returns the number of partners.
func (h *Hierarchy) Len() int {
	return len(h.order)
}

// IDs returns partner ids in input order.
func (h *Hierarchy) IDs() []int64 {
	return slices.Clone(h.order)
}

// Partner returns a copy of the partner with the given id.
func (h *Hierarchy) Partner(id int64) (models.Partner, bool) {
	p, ok := h.partners[id]
	if !ok {
		return models.Partner{}, false
	}
	return p.Clone(), true
}

// MonthlyRevenue returns the monthly revenue of a partner.
func (h *Hierarchy) MonthlyRevenue(id int64) (decimal.Decimal, bool) {
	p, ok := h.partners[id]
	if !ok {
		return decimal.Zero, false
	}
	return p.MonthlyRevenue, true
}

// Children returns the direct children of a partner in input order.
func (h *Hierarchy) Children(id int64) []int64 {
	p, ok := h.partners[id]
	if !ok {
		return nil
	}
	return slices.Clone(p.Children)
}

// Roots returns the partners without a parent in input order.
func (h *Hierarchy) Roots() []int64 {
	var roots []int64
	for _, id := range h.order {
		if h.partners[id].IsRoot() {
			roots = append(roots, id)
		}
	}
	return roots
}

// Depth returns the number of ancestors above a partner; roots have depth 0.
func (h *Hierarchy) Depth(id int64) int {
	depth := 0
	for {
		pid, ok := h.parentOf(id)
		if !ok {
			return depth
		}
		depth++
		id = pid
	}
}

// Depths returns the depth of every partner, walking each ancestor once.
func (h *Hierarchy) Depths() map[int64]int {
	depths := make(map[int64]int, len(h.order))
	for _, id := range h.order {
		h.depthCached(id, depths)
	}
	return depths
}

// MaxDepth returns the greatest partner depth in the forest.
func (h *Hierarchy) MaxDepth() int {
	maxDepth := 0
	for _, d := range h.Depths() {
		if d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

func (h *Hierarchy) depthCached(id int64, depths map[int64]int) int {
	var chain []int64
	depth := 0
	current := id
	for {
		if d, ok := depths[current]; ok {
			depth = d
			break
		}
		chain = append(chain, current)
		pid, ok := h.parentOf(current)
		if !ok {
			depth = -1
			break
		}
		current = pid
	}
	// chain holds the walked partners from id upwards; assign from the top.
	for i := len(chain) - 1; i >= 0; i-- {
		depth++
		depths[chain[i]] = depth
	}
	return depths[id]
}
