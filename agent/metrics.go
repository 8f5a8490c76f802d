package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nstehr/ares/ares-core/agent"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics are recorded through the global OTel provider, which is a no-op
// until the process installs one.
type metrics struct {
	ticks          metric.Int64Counter
	assigned       metric.Int64Counter
	allocErrors    metric.Int64Counter
	postureChanges metric.Int64Counter
	allocLatency   metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.ticks, err = m.Int64Counter(
		"ares.ticks",
		metric.WithDescription("Game state ticks processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	out.assigned, err = m.Int64Counter(
		"ares.focus.assigned",
		metric.WithDescription("Friendly units given an attack target"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assigned counter: %w", err)
	}

	out.allocErrors, err = m.Int64Counter(
		"ares.focus.errors",
		metric.WithDescription("Allocations rejected for invalid input"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating allocation error counter: %w", err)
	}

	out.postureChanges, err = m.Int64Counter(
		"ares.posture.changes",
		metric.WithDescription("Posture transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating posture counter: %w", err)
	}

	out.allocLatency, err = m.Float64Histogram(
		"ares.focus.latency",
		metric.WithDescription("Wall time of one allocation call"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}

	return &out, nil
}

func (m *metrics) tick(ctx context.Context, posture string, engaged bool) {
	m.ticks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("posture", posture),
		attribute.Bool("engaged", engaged),
	))
}

func (m *metrics) allocation(ctx context.Context, assigned int, took time.Duration, err error) {
	m.allocLatency.Record(ctx, float64(took.Microseconds())/1000)
	if err != nil {
		m.allocErrors.Add(ctx, 1)
		return
	}
	m.assigned.Add(ctx, int64(assigned))
}

func (m *metrics) postureChanged(ctx context.Context, to string) {
	m.postureChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("posture", to)))
}
