package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/judgestat/internal/ports"
)

// Metric names recorded by the tracking middlewares.
const (
	MetricRequestDuration = "tracking_request_duration_seconds"
	MetricRequestsTotal   = "tracking_requests_total"
	MetricCircuitState    = "tracking_circuit_state"
)

// metricsSink records latency and outcome of every backend call.
type metricsSink struct {
	next      Sink
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that collects call metrics.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next Sink) Sink {
		return &metricsSink{
			next:      next,
			collector: collector,
		}
	}
}

func (m *metricsSink) Name() string { return m.next.Name() }

func (m *metricsSink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	start := time.Now()
	err := m.next.LogMetrics(ctx, run, metrics)
	m.record(ctx, OpLogMetrics, start, err)
	return err
}

func (m *metricsSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	start := time.Now()
	err := m.next.UploadArtifact(ctx, run, artifact)
	m.record(ctx, OpUploadArtifact, start, err)
	return err
}

func (m *metricsSink) record(ctx context.Context, op string, start time.Time, err error) {
	if m.collector == nil {
		return
	}

	labels := map[string]string{
		"sink":      m.next.Name(),
		"operation": op,
		"status":    "success",
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrCircuitOpen):
			labels["status"] = "circuit_open"
		case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
			labels["status"] = "timeout"
		default:
			labels["status"] = "error"
		}
	}

	m.collector.RecordHistogram(MetricRequestDuration, time.Since(start).Seconds(), labels)
	m.collector.RecordCounter(MetricRequestsTotal, 1, labels)
}
