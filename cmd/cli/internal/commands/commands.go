package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wolfeidau/commissions/internal/calculator"
	"github.com/wolfeidau/commissions/internal/commission"
	"github.com/wolfeidau/commissions/internal/dataset"
	"github.com/wolfeidau/commissions/internal/logger"
	"github.com/wolfeidau/commissions/internal/models"
)

type Globals struct {
	Debug   bool
	Version string
}

// InputFlags selects the partner file.
type InputFlags struct {
	Input  string `help:"Partner file (.json, .yaml or .yml, optionally .gz or .zst); - reads stdin" required:"" short:"i"`
	Format string `help:"Partner file format" default:"auto" enum:"auto,json,yaml"`
}

func (f *InputFlags) read() ([]models.PartnerRecord, error) {
	records, err := dataset.ReadFile(f.Input, dataset.Format(f.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to read partners from %s: %w", f.Input, err)
	}
	return records, nil
}

// MonthFlags controls how monthly revenue becomes daily revenue.
type MonthFlags struct {
	DaysInMonth int    `help:"Fixed days per month (28-31); overrides --date" default:"0" env:"COMMISSIONS_DAYS_IN_MONTH"`
	Date        string `help:"Reference date (YYYY-MM-DD) whose month length is used; defaults to today" env:"COMMISSIONS_DATE"`
}

func (f *MonthFlags) engine() (*commission.Engine, error) {
	var opts []commission.Option
	if f.Date != "" {
		date, err := time.Parse(time.DateOnly, f.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", f.Date)
		}
		opts = append(opts, commission.WithReferenceDate(date))
	}
	if f.DaysInMonth != 0 {
		opts = append(opts, commission.WithDaysInMonth(f.DaysInMonth))
	}
	return commission.NewEngine(opts...)
}

// setup returns a context carrying the command logger and a calculator.
func setup(ctx context.Context, globals *Globals, month MonthFlags) (context.Context, *calculator.Calculator, error) {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	engine, err := month.engine()
	if err != nil {
		return ctx, nil, err
	}
	return ctx, calculator.New(engine), nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
