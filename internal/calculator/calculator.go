// Package calculator runs one build-and-compute pass with logging, metrics and tracing.
package calculator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/commissions/internal/commission"
	"github.com/wolfeidau/commissions/internal/hierarchy"
	"github.com/wolfeidau/commissions/internal/models"
	"github.com/wolfeidau/commissions/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/wolfeidau/commissions/internal/calculator"

// Outcome is the product of a successful pass.
type Outcome struct {
	Hierarchy *hierarchy.Hierarchy
	Result    *commission.Result
}

// Calculator wraps the hierarchy builder and commission engine.
type Calculator struct {
	engine  *commission.Engine
	metrics *telemetry.Metrics
}

// New returns a calculator using the given engine.
func New(engine *commission.Engine) *Calculator {
	return &Calculator{
		engine:  engine,
		metrics: telemetry.GetMetrics(),
	}
}

// Build validates records into a hierarchy.
func (c *Calculator) Build(ctx context.Context, records []models.PartnerRecord) (*hierarchy.Hierarchy, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "hierarchy.build")
	defer span.End()

	span.SetAttributes(attribute.Int("partners.records", len(records)))

	h, err := hierarchy.Build(records)
	if err != nil {
		reason := FailureReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		c.metrics.RecordBuild(ctx, 0, reason, err)
		zerolog.Ctx(ctx).Warn().Err(err).Str("reason", reason).Msg("partner hierarchy rejected")
		return nil, err
	}

	depth := h.MaxDepth()
	span.SetAttributes(
		attribute.Int("partners.count", h.Len()),
		attribute.Int("partners.roots", len(h.Roots())),
		attribute.Int("hierarchy.depth", depth),
	)
	c.metrics.RecordBuild(ctx, depth, "", nil)

	zerolog.Ctx(ctx).Debug().
		Int("partners", h.Len()).
		Int("roots", len(h.Roots())).
		Int("depth", depth).
		Msg("partner hierarchy built")

	return h, nil
}

// Compute returns commissions for every partner in h.
func (c *Calculator) Compute(ctx context.Context, h *hierarchy.Hierarchy) *commission.Result {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commission.compute")
	defer span.End()

	started := time.Now()
	result := c.engine.ComputeAll(h)
	c.metrics.RecordCompute(ctx, result.Len(), started)

	span.SetAttributes(
		attribute.Int("partners.count", result.Len()),
		attribute.Int("commission.days_in_month", result.DaysInMonth),
		attribute.String("commission.total", result.Total().StringFixed(2)),
	)

	zerolog.Ctx(ctx).Info().
		Int("partners", result.Len()).
		Int("days_in_month", result.DaysInMonth).
		Str("total", result.Total().StringFixed(2)).
		Dur("duration", time.Since(started)).
		Msg("commissions computed")

	return result
}

// Run builds the hierarchy and computes every commission.
func (c *Calculator) Run(ctx context.Context, records []models.PartnerRecord) (*Outcome, error) {
	h, err := c.Build(ctx, records)
	if err != nil {
		return nil, err
	}
	return &Outcome{Hierarchy: h, Result: c.Compute(ctx, h)}, nil
}

// Report returns the per partner report for a built hierarchy.
func (c *Calculator) Report(ctx context.Context, h *hierarchy.Hierarchy) *commission.Report {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commission.report")
	defer span.End()

	started := time.Now()
	report := c.engine.Report(h)
	c.metrics.RecordCompute(ctx, len(report.Partners), started)

	span.SetAttributes(
		attribute.Int("partners.count", len(report.Partners)),
		attribute.Int("commission.days_in_month", report.DaysInMonth),
	)
	return report
}

// FailureReason classifies a build error for metrics and logs.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, hierarchy.ErrInvalidPartnerID):
		return "invalid_id"
	case errors.Is(err, hierarchy.ErrInvalidParentID):
		return "invalid_parent_id"
	case errors.Is(err, hierarchy.ErrDuplicatePartnerID):
		return "duplicate_id"
	case errors.Is(err, hierarchy.ErrCycleDetected):
		return "cycle"
	case errors.Is(err, hierarchy.ErrParentNotFound):
		return "parent_not_found"
	case errors.Is(err, hierarchy.ErrInvalidRevenue):
		return "invalid_revenue"
	default:
		return "unknown"
	}
}

// IsValidationError reports whether err came from hierarchy validation.
func IsValidationError(err error) bool {
	return FailureReason(err) != "unknown"
}
