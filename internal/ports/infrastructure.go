package ports

import (
	"context"
	"time"

	"github.com/ahrav/judgestat/internal/domain"
)

// DatasetSource defines the interface for obtaining a judgment dataset.
// Implementations could read CSV files, spreadsheets or in-memory fixtures.
// The pipeline calls Load exactly once per run.
type DatasetSource interface {
	// Load reads the complete dataset from the underlying source.
	// Implementations must fail fast with a *domain.DatasetLoadError rather
	// than silently dropping malformed rows.
	Load(ctx context.Context) (*domain.JudgmentDataset, error)

	// Name returns a human readable identifier for the source, such as
	// its file path. It is used for logging and error context.
	Name() string
}

// Artifact describes a file produced by a reporter.
type Artifact struct {
	// Name is the logical key of the artifact, e.g. "decision_matrix".
	// Tracking backends use it as the image or object key.
	Name string `json:"name"`

	// Path is the location of the artifact on the local filesystem.
	Path string `json:"path"`

	// ContentType is the MIME type of the artifact.
	ContentType string `json:"content_type"`
}

// Reporter defines the interface for presentation collaborators that
// consume a computed summary: console tables, chart renderers and
// spreadsheet exporters.
// Reporters must not mutate the summary.
type Reporter interface {
	// Name returns the reporter identifier used in logs and errors.
	Name() string

	// Report renders the summary and returns any files it wrote.
	// Reporters that only print return a nil slice.
	Report(ctx context.Context, summary *domain.Summary) ([]Artifact, error)
}

// RunInfo identifies one analysis run for experiment tracking.
type RunInfo struct {
	// Project groups related runs, e.g. "chatbot-arena".
	Project string `json:"project"`

	// Name identifies the run within its project, e.g. "judge-analysis".
	Name string `json:"name"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
}

// MetricsLogger defines the interface for shipping run results to an
// experiment-tracking service.
// Implementations should treat every call as keyed by RunInfo so that
// repeated runs with the same name overwrite rather than duplicate.
type MetricsLogger interface {
	// Log sends scalar metrics and uploads the given artifacts.
	// A nil error means every metric and artifact was accepted.
	Log(ctx context.Context, run RunInfo, metrics map[string]float64, artifacts []Artifact) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus,
// OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like stage successes and failures.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like dataset size or agreement rate.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like artifact sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
