package tracking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ahrav/judgestat/internal/ports"
)

// retrySink implements automatic retry logic with exponential backoff.
// Only transient failures are retried: errors that carry a non-retryable
// *ports.TrackingError, an open circuit or a canceled context stop at once.
type retrySink struct {
	next       Sink
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware creates middleware that automatically retries failed calls
// with exponential backoff and jitter.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next Sink) Sink {
		return &retrySink{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

func (r *retrySink) Name() string { return r.next.Name() }

func (r *retrySink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.next.LogMetrics(ctx, run, metrics)
	})
}

func (r *retrySink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.next.UploadArtifact(ctx, run, artifact)
	})
}

func (r *retrySink) do(ctx context.Context, call func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := call(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			break
		}

		if attempt == r.maxRetries {
			break
		}

		delay := r.calculateDelay(attempt)
		var te *ports.TrackingError
		if errors.As(err, &te) && te.RetryAfter != nil && *te.RetryAfter > delay {
			delay = *te.RetryAfter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", r.next.Name(), r.maxRetries+1, lastErr)
}

// retryable reports whether err may succeed on a later attempt. Errors that
// are not classified as a *ports.TrackingError are treated as transient.
func retryable(err error) bool {
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	var te *ports.TrackingError
	if errors.As(err, &te) {
		return te.IsRetryable()
	}
	return true
}

func (r *retrySink) calculateDelay(attempt int) time.Duration {
	// Exponential backoff with jitter.
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	multiplier := 1 << uint(attempt)
	delay := time.Duration(float64(r.baseDelay) * float64(multiplier))

	// Add jitter (±25%)
	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	if delay > r.maxDelay {
		delay = r.maxDelay
	}

	return delay
}
