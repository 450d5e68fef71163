package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PartnerRecord is a single partner as supplied by the caller, before validation.
// Values are kept raw so the hierarchy builder decides what counts as an integer.
type PartnerRecord struct {
	ID             any     `json:"id" yaml:"id"`
	ParentID       any     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name           *string `json:"name,omitempty" yaml:"name,omitempty"`
	MonthlyRevenue any     `json:"monthly_revenue" yaml:"monthly_revenue"`
}

// Partner is a validated node of the partner hierarchy.
type Partner struct {
	ID             int64
	Name           string
	MonthlyRevenue decimal.Decimal
	ParentID       *int64  // nil for a root partner
	Children       []int64 // direct children in input order
}

// IsRoot returns true if the partner has no parent.
func (p *Partner) IsRoot() bool {
	return p.ParentID == nil
}

// IsLeaf returns true if the partner has no children.
func (p *Partner) IsLeaf() bool {
	return len(p.Children) == 0
}

// Clone returns a deep copy so callers can't mutate hierarchy internals.
func (p *Partner) Clone() Partner {
	c := *p
	if p.ParentID != nil {
		pid := *p.ParentID
		c.ParentID = &pid
	}
	c.Children = append([]int64(nil), p.Children...)
	return c
}

// DefaultPartnerName is used when a record carries no name.
func DefaultPartnerName(id int64) string {
	return fmt.Sprintf("Partner %d", id)
}
