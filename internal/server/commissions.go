package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/commissions/internal/calculator"
	"github.com/wolfeidau/commissions/internal/commission"
	"github.com/wolfeidau/commissions/internal/dataset"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCommissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	engine, err := s.engineFor(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	format := dataset.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = dataset.FormatYAML
	}

	records, err := dataset.Decode(r.Body, format)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	calc := calculator.New(engine)

	if detail, _ := strconv.ParseBool(query.Get("detail")); detail {
		h, err := calc.Build(ctx, records)
		if err != nil {
			writeBuildError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, calc.Report(ctx, h))
		return
	}

	outcome, err := calc.Run(ctx, records)
	if err != nil {
		writeBuildError(w, err)
		return
	}

	zerolog.Ctx(ctx).Debug().Int("partners", outcome.Result.Len()).Msg("commissions returned")
	writeJSON(w, http.StatusOK, outcome.Result)
}

// engineFor applies per request overrides: days_in_month wins over date,
// which wins over the server defaults.
func (s *Server) engineFor(query url.Values) (*commission.Engine, error) {
	opts := []commission.Option{commission.WithClock(s.cfg.Clock)}
	if s.cfg.DaysInMonth != 0 {
		opts = append(opts, commission.WithDaysInMonth(s.cfg.DaysInMonth))
	}

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
		}
		opts = append(opts, commission.WithReferenceDate(date), commission.WithDaysInMonth(0))
	}

	if raw := query.Get("days_in_month"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("%w: %q", commission.ErrInvalidDaysInMonth, raw)
		}
		opts = append(opts, commission.WithDaysInMonth(days))
	}

	return commission.NewEngine(opts...)
}

func writeBuildError(w http.ResponseWriter, err error) {
	if calculator.IsValidationError(err) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
