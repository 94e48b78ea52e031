package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/judgestat/internal/ports"
)

// DefaultConcurrency bounds parallel artifact uploads when no option is set.
const DefaultConcurrency = 4

// Tracker implements ports.MetricsLogger by fanning a run out to every
// configured sink. Metrics are logged to each sink in order; artifacts are
// then uploaded to all sinks in parallel with bounded concurrency.
// The first failure cancels the remaining uploads and is returned.
type Tracker struct {
	sinks       []Sink
	concurrency int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*trackerConfig)

type trackerConfig struct {
	concurrency int
	middleware  []Middleware
}

// WithConcurrency bounds the number of simultaneous artifact uploads.
func WithConcurrency(n int) TrackerOption {
	return func(c *trackerConfig) { c.concurrency = n }
}

// WithMiddleware wraps every sink with mws. The first middleware is the
// outermost.
func WithMiddleware(mws ...Middleware) TrackerOption {
	return func(c *trackerConfig) { c.middleware = append(c.middleware, mws...) }
}

// NewTracker creates a tracker over sinks.
// NewTracker returns an error if no sink is given.
func NewTracker(sinks []Sink, opts ...TrackerOption) (*Tracker, error) {
	if len(sinks) == 0 {
		return nil, errors.New("tracker requires at least one sink")
	}

	cfg := trackerConfig{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", cfg.concurrency)
	}

	wrapped := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			return nil, errors.New("tracker sink cannot be nil")
		}
		wrapped = append(wrapped, Chain(s, cfg.middleware...))
	}

	return &Tracker{sinks: wrapped, concurrency: cfg.concurrency}, nil
}

// Sinks returns the names of the configured sinks.
func (t *Tracker) Sinks() []string {
	names := make([]string, len(t.sinks))
	for i, s := range t.sinks {
		names[i] = s.Name()
	}
	return names
}

// Log ships the run's metrics and artifacts to every sink.
func (t *Tracker) Log(ctx context.Context, run ports.RunInfo, metrics map[string]float64, artifacts []ports.Artifact) error {
	if run.Project == "" || run.Name == "" {
		return fmt.Errorf("run project and name are required, got %q/%q", run.Project, run.Name)
	}
	log := clog.FromContext(ctx).With("project", run.Project, "run", run.Name)

	for _, s := range t.sinks {
		if err := s.LogMetrics(ctx, run, metrics); err != nil {
			return fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		log.Debug("metrics logged", "sink", s.Name(), "count", len(metrics))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for _, s := range t.sinks {
		for _, a := range artifacts {
			g.Go(func() error {
				if err := s.UploadArtifact(gctx, run, a); err != nil {
					return fmt.Errorf("sink %s: artifact %s: %w", s.Name(), a.Name, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("run tracked", "sinks", len(t.sinks), "metrics", len(metrics), "artifacts", len(artifacts))
	return nil
}

var _ ports.MetricsLogger = (*Tracker)(nil)
