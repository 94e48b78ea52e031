package tracking

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/judgestat/internal/ports"
)

// rateLimitedSink paces calls with a token bucket so that bursts of artifact
// uploads do not trip backend rate limits.
type rateLimitedSink struct {
	next    Sink
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting using a token bucket algorithm.
// The limit parameter sets calls per second, while burst allows
// temporary spikes above the sustained rate. The limiter is shared by every
// sink the middleware wraps.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next Sink) Sink {
		return &rateLimitedSink{
			next:    next,
			limiter: limiter,
		}
	}
}

func (r *rateLimitedSink) Name() string { return r.next.Name() }

// LogMetrics waits for rate limit permission before forwarding the call.
func (r *rateLimitedSink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return r.next.LogMetrics(ctx, run, metrics)
}

// UploadArtifact waits for rate limit permission before forwarding the call.
func (r *rateLimitedSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return r.next.UploadArtifact(ctx, run, artifact)
}
