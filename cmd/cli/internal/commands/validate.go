package commands

import (
	"context"
	"fmt"
	"io"
)

// ValidateCmd checks a partner file without computing commissions.
type ValidateCmd struct {
	InputFlags `embed:""`

	out io.Writer `kong:"-"`
}

func (v *ValidateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, calc, err := setup(ctx, globals, MonthFlags{})
	if err != nil {
		return err
	}

	records, err := v.read()
	if err != nil {
		return err
	}

	h, err := calc.Build(ctx, records)
	if err != nil {
		return fmt.Errorf("invalid partner hierarchy: %w", err)
	}

	w := stdout(v.out)
	fmt.Fprintf(w, "Partners:  %d\n", h.Len())
	fmt.Fprintf(w, "Roots:     %d\n", len(h.Roots()))
	fmt.Fprintf(w, "Max depth: %d\n", h.MaxDepth())
	fmt.Fprintln(w, "Hierarchy is valid.")

	return nil
}
