package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/wolfeidau/commissions/internal/commission"
	"github.com/wolfeidau/commissions/internal/hierarchy"
)

const labelWidth = 40

// TreeCmd prints the partner forest with each partner's daily revenue and commission.
type TreeCmd struct {
	InputFlags `embed:""`
	MonthFlags `embed:""`

	out io.Writer `kong:"-"`
}

func (t *TreeCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, calc, err := setup(ctx, globals, t.MonthFlags)
	if err != nil {
		return err
	}

	records, err := t.read()
	if err != nil {
		return err
	}

	h, err := calc.Build(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to build partner hierarchy: %w", err)
	}

	report := calc.Report(ctx, h)
	byID := make(map[int64]commission.Line, len(report.Partners))
	for _, line := range report.Partners {
		byID[line.ID] = line
	}

	w := stdout(t.out)
	fmt.Fprintf(w, "%s %16s %12s\n", fit("Partner", labelWidth), "Daily Revenue", "Commission")
	fmt.Fprintln(w, strings.Repeat("─", 70))

	for _, id := range walk(h) {
		line := byID[id]
		label := fmt.Sprintf("%s%s (#%d)", strings.Repeat("  ", line.Depth), line.Name, line.ID)
		fmt.Fprintf(w, "%s %16s %12s\n", fit(label, labelWidth), line.DailyRevenue.StringFixed(2), line.Commission.StringFixed(2))
	}

	total := decimal.Zero
	for _, line := range report.Partners {
		total = total.Add(line.Commission)
	}
	fmt.Fprintf(w, "\nPartners: %d  Roots: %d  Total commission: %s\n", h.Len(), len(h.Roots()), total.StringFixed(2))

	return nil
}

// fit truncates or pads s to exactly width runes.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		return string([]rune(s)[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// walk returns partner ids depth first, each root followed by its subtree.
func walk(h *hierarchy.Hierarchy) []int64 {
	order := make([]int64, 0, h.Len())

	stack := slices.Clone(h.Roots())
	slices.Reverse(stack)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)

		children := h.Children(id)
		slices.Reverse(children)
		stack = append(stack, children...)
	}

	return order
}
