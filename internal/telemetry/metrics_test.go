package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m := initMetrics()
	ctx := context.Background()

	m.RecordBuild(ctx, 3, "", nil)
	m.RecordBuild(ctx, 0, "cycle", errors.New("cycle detected"))
	m.RecordCompute(ctx, 6, time.Now().Add(-time.Millisecond))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[md.Name] += dp.Value
			}
		}
	}

	require.Equal(t, int64(1), sums["commissions.hierarchies.built.total"])
	require.Equal(t, int64(1), sums["commissions.hierarchies.failures.total"])
	require.Equal(t, int64(6), sums["commissions.partners.computed.total"])
}

func TestSampler(t *testing.T) {
	require.Equal(t, "AlwaysOnSampler", sampler(1).Description())
	require.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	require.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
}

func TestJoinShutdown(t *testing.T) {
	var calls []string
	ok := func(name string) ShutdownFunc {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}
	failing := func(context.Context) error {
		calls = append(calls, "failing")
		return errors.New("exporter unavailable")
	}

	require.NoError(t, joinShutdown()(context.Background()))
	require.NoError(t, joinShutdown(ok("trace"), ok("metric"))(context.Background()))
	require.Equal(t, []string{"trace", "metric"}, calls)

	calls = nil
	err := joinShutdown(failing, ok("metric"))(context.Background())
	require.ErrorContains(t, err, "telemetry shutdown: exporter unavailable")
	require.Equal(t, []string{"failing", "metric"}, calls)
}
