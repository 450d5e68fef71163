package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/commissions"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Hierarchy metrics
	HierarchiesBuiltTotal metric.Int64Counter
	BuildFailuresTotal    metric.Int64Counter
	HierarchyDepth        metric.Int64Histogram

	// Commission metrics
	PartnersComputedTotal metric.Int64Counter
	ComputeDuration       metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.HierarchiesBuiltTotal, _ = meter.Int64Counter(
		"commissions.hierarchies.built.total",
		metric.WithDescription("Total number of partner hierarchies built successfully"),
		metric.WithUnit("{hierarchy}"),
	)

	m.BuildFailuresTotal, _ = meter.Int64Counter(
		"commissions.hierarchies.failures.total",
		metric.WithDescription("Total number of partner hierarchies rejected during validation"),
		metric.WithUnit("{error}"),
	)

	m.HierarchyDepth, _ = meter.Int64Histogram(
		"commissions.hierarchies.depth",
		metric.WithDescription("Maximum depth of built partner hierarchies"),
		metric.WithUnit("{level}"),
	)

	m.PartnersComputedTotal, _ = meter.Int64Counter(
		"commissions.partners.computed.total",
		metric.WithDescription("Total number of partner commissions computed"),
		metric.WithUnit("{partner}"),
	)

	m.ComputeDuration, _ = meter.Float64Histogram(
		"commissions.compute.duration",
		metric.WithDescription("Duration of commission computation passes"),
		metric.WithUnit("ms"),
	)

	return m
}

// RecordBuild records the outcome of a hierarchy build. reason names the
// failure class and is ignored on success.
func (m *Metrics) RecordBuild(ctx context.Context, depth int, reason string, err error) {
	if err != nil {
		m.BuildFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
		return
	}
	m.HierarchiesBuiltTotal.Add(ctx, 1)
	m.HierarchyDepth.Record(ctx, int64(depth))
}

// RecordCompute records a completed commission pass.
func (m *Metrics) RecordCompute(ctx context.Context, partners int, started time.Time) {
	m.PartnersComputedTotal.Add(ctx, int64(partners))
	m.ComputeDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000)
}
