package commission

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/wolfeidau/commissions/internal/hierarchy"
)

// Report is the per partner detail of one commission pass.
type Report struct {
	// DaysInMonth is the day count the pass used.
	DaysInMonth int    `json:"days_in_month"`
	Partners    []Line `json:"partners"`
}

// Line describes one partner in a commission report.
type Line struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	ParentID     *int64          `json:"parent_id"`
	Depth        int             `json:"depth"`
	Children     int             `json:"children"`
	DailyRevenue decimal.Decimal `json:"daily_revenue"`
	Commission   decimal.Decimal `json:"commission"`
}

// MarshalJSON writes amounts as numbers: daily revenue to four places and
// commission to two, matching the commission document.
func (l Line) MarshalJSON() ([]byte, error) {
	type line Line
	return json.Marshal(struct {
		line
		DailyRevenue json.RawMessage `json:"daily_revenue"`
		Commission   json.RawMessage `json:"commission"`
	}{
		line:         line(l),
		DailyRevenue: json.RawMessage(l.DailyRevenue.StringFixed(4)),
		Commission:   json.RawMessage(l.Commission.StringFixed(2)),
	})
}

// Report returns a line per partner in declaration order. Daily revenue is
// shown to four places; commissions are the same values ComputeAll returns.
func (e *Engine) Report(h *hierarchy.Hierarchy) *Report {
	result := e.ComputeAll(h)
	depths := h.Depths()

	lines := make([]Line, 0, result.Len())
	for _, id := range result.IDs() {
		p, _ := h.Partner(id)
		amount, _ := result.Get(id)
		lines = append(lines, Line{
			ID:           p.ID,
			Name:         p.Name,
			ParentID:     p.ParentID,
			Depth:        depths[id],
			Children:     len(p.Children),
			DailyRevenue: DailyRevenue(p.MonthlyRevenue, result.DaysInMonth).Round(4),
			Commission:   amount,
		})
	}
	return &Report{DaysInMonth: result.DaysInMonth, Partners: lines}
}
