// Package commission computes daily referral commissions over a partner hierarchy.
//
// A partner earns CommissionRate on the daily revenue of each direct child.
// A child's own positive commission is divided back by the rate and added to
// the base, so deeper revenue carries up through every ancestor. Amounts are
// rounded half-up to cents at each partner.
package commission

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wolfeidau/commissions/internal/hierarchy"
)

// divisionPlaces bounds the fractional digits kept by non-terminating divisions.
const divisionPlaces = 28

// CommissionRate is the share of the descendant base paid to a partner.
var CommissionRate = decimal.RequireFromString("0.05")

// ErrInvalidDaysInMonth indicates a day count outside a calendar month's range.
var ErrInvalidDaysInMonth = errors.New("invalid days in month")

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the source of the reference date.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithReferenceDate pins the month used for daily revenue conversion.
func WithReferenceDate(t time.Time) Option {
	return WithClock(FixedClock(t))
}

// WithDaysInMonth overrides the month length; the clock is then ignored.
func WithDaysInMonth(days int) Option {
	return func(e *Engine) {
		e.daysInMonth = days
	}
}

// Engine computes commissions. It never mutates the hierarchy it reads.
type Engine struct {
	clock       Clock
	daysInMonth int
}

// NewEngine returns an engine that, by default, divides monthly revenue by the
// length of the current wall-clock month.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{clock: WallClock}
	for _, opt := range opts {
		opt(e)
	}

	if e.daysInMonth != 0 && (e.daysInMonth < 28 || e.daysInMonth > 31) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDaysInMonth, e.daysInMonth)
	}

	return e, nil
}

// DaysInMonth returns the day count used for the next computation.
func (e *Engine) DaysInMonth() int {
	if e.daysInMonth != 0 {
		return e.daysInMonth
	}
	now := e.clock.Now()
	return DaysIn(now.Year(), now.Month())
}

// ComputeAll returns the commission of every partner in the hierarchy.
func (e *Engine) ComputeAll(h *hierarchy.Hierarchy) *Result {
	days := e.DaysInMonth()
	return &Result{
		DaysInMonth: days,
		ids:         h.IDs(),
		values:      compute(h, decimal.NewFromInt(int64(days))),
	}
}

// DailyRevenue converts a monthly amount to a daily amount.
func DailyRevenue(monthly decimal.Decimal, days int) decimal.Decimal {
	return dailyRevenue(monthly, decimal.NewFromInt(int64(days)))
}

func dailyRevenue(monthly, days decimal.Decimal) decimal.Decimal {
	return monthly.DivRound(days, divisionPlaces)
}

type frame struct {
	id       int64
	expanded bool
}

// compute walks every subtree post-order on an explicit stack, so chain depth
// is bounded by memory rather than by the goroutine stack. Each commission is
// settled once its children are settled.
func compute(h *hierarchy.Hierarchy, days decimal.Decimal) map[int64]decimal.Decimal {
	settled := make(map[int64]decimal.Decimal, h.Len())

	for _, start := range h.IDs() {
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			top := len(stack) - 1
			id := stack[top].id

			if _, done := settled[id]; done {
				stack = stack[:top]
				continue
			}

			if !stack[top].expanded {
				stack[top].expanded = true
				for _, child := range h.Children(id) {
					if _, done := settled[child]; !done {
						stack = append(stack, frame{id: child})
					}
				}
				continue
			}

			settled[id] = settle(h, id, days, settled)
			stack = stack[:top]
		}
	}

	return settled
}

func settle(h *hierarchy.Hierarchy, id int64, days decimal.Decimal, settled map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, child := range h.Children(id) {
		revenue, _ := h.MonthlyRevenue(child)
		total = total.Add(dailyRevenue(revenue, days))

		if childCommission := settled[child]; childCommission.IsPositive() {
			total = total.Add(childCommission.DivRound(CommissionRate, divisionPlaces))
		}
	}

	// Round is half away from zero, which is half-up for non-negative amounts.
	return total.Mul(CommissionRate).Round(2)
}
