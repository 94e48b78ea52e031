package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahrav/judgestat/internal/ports"
)

// ErrCircuitOpen indicates that the circuit breaker rejected a call.
// This error is returned when the circuit is open and prevents
// calls from reaching an unhealthy backend.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the current state of a circuit breaker.
type CircuitBreakerState int

// Circuit breaker states.
const (
	// StateClosed allows all calls to pass through normally.
	StateClosed CircuitBreakerState = iota

	// StateOpen rejects all calls immediately.
	// The circuit enters this state after too many consecutive failures.
	StateOpen

	// StateHalfOpen lets a single call through to test recovery.
	// The circuit transitions to this state after the cooldown period expires.
	StateHalfOpen
)

// String returns the lower-case state name.
func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements the circuit breaker pattern.
// It counts consecutive failures, opens when they reach the threshold and
// tests recovery through a half-open state after the cooldown.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitBreakerState
	failureCount     int
	maxFailures      int
	cooldownDuration time.Duration
	lastFailure      time.Time
	now              func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with the specified configuration.
// The circuit opens after maxFailures consecutive errors and stays open
// for cooldownDuration before testing recovery.
func NewCircuitBreaker(maxFailures int, cooldownDuration time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		maxFailures:      maxFailures,
		cooldownDuration: cooldownDuration,
		now:              time.Now,
	}
}

// Call executes fn through the circuit breaker.
// If the circuit is open, this returns ErrCircuitOpen immediately.
// Otherwise, it executes fn and updates the circuit state based on the result.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.cooldownDuration {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		fallthrough
	case StateHalfOpen:
		if err := fn(); err != nil {
			cb.failureCount++
			cb.lastFailure = cb.now()
			cb.state = StateOpen
			return err
		}
		cb.failureCount = 0
		cb.state = StateClosed
		return nil
	case StateClosed:
		if err := fn(); err != nil {
			cb.failureCount++
			cb.lastFailure = cb.now()
			if cb.failureCount >= cb.maxFailures {
				cb.state = StateOpen
			}
			return err
		}
		cb.failureCount = 0
		return nil
	}
	return nil
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// circuitBrokenSink stops calling a backend that keeps failing. Each wrapped
// sink gets its own breaker.
type circuitBrokenSink struct {
	next      Sink
	cb        *CircuitBreaker
	collector ports.MetricsCollector
}

// CircuitBreakerMiddleware creates middleware that implements the circuit breaker pattern.
// When collector is non-nil the breaker state is recorded as the
// tracking_circuit_state gauge after every call.
func CircuitBreakerMiddleware(maxFailures int, cooldown time.Duration, collector ports.MetricsCollector) Middleware {
	return func(next Sink) Sink {
		return &circuitBrokenSink{
			next:      next,
			cb:        NewCircuitBreaker(maxFailures, cooldown),
			collector: collector,
		}
	}
}

func (c *circuitBrokenSink) Name() string { return c.next.Name() }

func (c *circuitBrokenSink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	return c.do(func() error { return c.next.LogMetrics(ctx, run, metrics) })
}

func (c *circuitBrokenSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	return c.do(func() error { return c.next.UploadArtifact(ctx, run, artifact) })
}

func (c *circuitBrokenSink) do(fn func() error) error {
	err := c.cb.Call(fn)
	if c.collector != nil {
		c.collector.RecordGauge(MetricCircuitState, float64(c.cb.State()), map[string]string{"sink": c.next.Name()})
	}
	return err
}
