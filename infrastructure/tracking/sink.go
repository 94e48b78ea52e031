// Package tracking ships run metrics and report artifacts to experiment
// tracking backends. Each backend is a Sink; cross-cutting concerns such as
// rate limiting, retries and tracing are layered on as Middleware, and a
// Tracker fans one run out to every configured sink.
package tracking

import (
	"context"

	"github.com/ahrav/judgestat/internal/ports"
)

// Sink operation names, used in errors, spans and metric labels.
const (
	OpLogMetrics     = "log_metrics"
	OpUploadArtifact = "upload_artifact"
)

// Sink is a single tracking backend.
// Implementations must treat a run as identified by its project and name so
// that logging the same run twice overwrites rather than duplicates.
type Sink interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// LogMetrics records the scalar metrics of a run. Implementations must
	// not modify the map.
	LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error

	// UploadArtifact stores one artifact file for a run. Backends that only
	// hold metrics accept and ignore artifacts.
	UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error
}

// Middleware wraps a Sink to add cross-cutting functionality.
// This pattern allows composition of features like rate limiting, retries
// and tracing without modifying backend logic.
type Middleware func(Sink) Sink

// Chain wraps sink with mws. The first middleware is the outermost.
func Chain(sink Sink, mws ...Middleware) Sink {
	for i := len(mws) - 1; i >= 0; i-- {
		sink = mws[i](sink)
	}
	return sink
}
