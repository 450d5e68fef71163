package commission

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// Result holds one commission per partner, ordered as the partners were declared.
type Result struct {
	DaysInMonth int

	ids    []int64
	values map[int64]decimal.Decimal
}

// Len returns the number of partners in the result.
func (r *Result) Len() int {
	return len(r.ids)
}

// IDs returns partner ids in declaration order.
func (r *Result) IDs() []int64 {
	return slices.Clone(r.ids)
}

// Get returns the commission for a partner.
func (r *Result) Get(id int64) (decimal.Decimal, bool) {
	v, ok := r.values[id]
	return v, ok
}

// Total returns the sum of all commissions.
func (r *Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range r.ids {
		total = total.Add(r.values[id])
	}
	return total
}

// Float64s converts the result to the numeric form most encoders expect,
// keyed by the decimal id string.
func (r *Result) Float64s() map[string]float64 {
	out := make(map[string]float64, len(r.ids))
	for _, id := range r.ids {
		f, _ := r.values[id].Float64()
		out[strconv.FormatInt(id, 10)] = f
	}
	return out
}

// MarshalJSON encodes the result as an object of id to amount, keeping the
// declaration order and exactly two fractional digits.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(id, 10))
		buf.WriteString(`":`)
		buf.WriteString(r.values[id].StringFixed(2))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
