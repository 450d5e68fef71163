package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/commissions/internal/dataset"
)

// CalculateCmd computes the daily commission of every partner.
type CalculateCmd struct {
	InputFlags `embed:""`
	MonthFlags `embed:""`

	Output string `help:"Commission output file; - writes stdout" required:"" short:"o"`
}

func (c *CalculateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, calc, err := setup(ctx, globals, c.MonthFlags)
	if err != nil {
		return err
	}

	records, err := c.read()
	if err != nil {
		return err
	}

	outcome, err := calc.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to build partner hierarchy: %w", err)
	}

	if err := dataset.WriteFile(c.Output, outcome.Result); err != nil {
		return err
	}

	return nil
}
