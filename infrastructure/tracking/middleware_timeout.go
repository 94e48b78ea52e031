package tracking

import (
	"context"
	"time"

	"github.com/ahrav/judgestat/internal/ports"
)

// timeoutSink bounds each backend call so that a hung upload cannot stall
// the run.
type timeoutSink struct {
	next    Sink
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that enforces a per-call timeout.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Sink) Sink {
		return &timeoutSink{
			next:    next,
			timeout: timeout,
		}
	}
}

func (t *timeoutSink) Name() string { return t.next.Name() }

func (t *timeoutSink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.LogMetrics(ctx, run, metrics)
}

func (t *timeoutSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UploadArtifact(ctx, run, artifact)
}
