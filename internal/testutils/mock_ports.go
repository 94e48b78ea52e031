package testutils

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// MockDatasetSource implements ports.DatasetSource over in-memory records.
// Setting Err makes every Load fail with it.
type MockDatasetSource struct {
	Records []domain.JudgmentRecord
	Err     error
}

// Load builds a dataset from the configured records.
func (m *MockDatasetSource) Load(ctx context.Context) (*domain.JudgmentDataset, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.NewJudgmentDataset(m.Records)
}

// Name identifies the mock source.
func (m *MockDatasetSource) Name() string { return "mock" }

// MockReporter implements ports.Reporter, recording every summary it is
// given and returning a fixed artifact list.
type MockReporter struct {
	ReporterName string
	Artifacts    []ports.Artifact
	Err          error

	mu        sync.Mutex
	summaries []*domain.Summary
}

// Name returns ReporterName, or "mock" when unset.
func (m *MockReporter) Name() string {
	if m.ReporterName == "" {
		return "mock"
	}
	return m.ReporterName
}

// Report records the summary.
func (m *MockReporter) Report(_ context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Artifacts, nil
}

// Summaries returns the summaries reported so far.
func (m *MockReporter) Summaries() []*domain.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Summary(nil), m.summaries...)
}

// LoggedRun is one call captured by MockMetricsLogger.
type LoggedRun struct {
	Run       ports.RunInfo
	Metrics   map[string]float64
	Artifacts []ports.Artifact
}

// MockMetricsLogger implements ports.MetricsLogger in memory.
type MockMetricsLogger struct {
	Err error

	mu   sync.Mutex
	runs []LoggedRun
}

// Log captures the run.
func (m *MockMetricsLogger) Log(_ context.Context, run ports.RunInfo, metrics map[string]float64, artifacts []ports.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, LoggedRun{
		Run:       run,
		Metrics:   maps.Clone(metrics),
		Artifacts: append([]ports.Artifact(nil), artifacts...),
	})
	return m.Err
}

// Runs returns the captured runs.
func (m *MockMetricsLogger) Runs() []LoggedRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LoggedRun(nil), m.runs...)
}

// MockMetricsCollector implements ports.MetricsCollector in memory.
type MockMetricsCollector struct {
	mu         sync.Mutex
	Latencies  map[string][]time.Duration
	Counters   map[string]float64
	Gauges     map[string]float64
	Histograms map[string][]float64
}

// NewMockMetricsCollector creates an empty collector.
func NewMockMetricsCollector() *MockMetricsCollector {
	return &MockMetricsCollector{
		Latencies:  make(map[string][]time.Duration),
		Counters:   make(map[string]float64),
		Gauges:     make(map[string]float64),
		Histograms: make(map[string][]float64),
	}
}

func (m *MockMetricsCollector) RecordLatency(operation string, d time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Latencies[operation] = append(m.Latencies[operation], d)
}

func (m *MockMetricsCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[metric] += value
}

func (m *MockMetricsCollector) RecordGauge(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[metric] = value
}

func (m *MockMetricsCollector) RecordHistogram(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Histograms[metric] = append(m.Histograms[metric], value)
}

// Counter returns the accumulated value of a counter.
func (m *MockMetricsCollector) Counter(metric string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[metric]
}

// LatencyCount returns how many latencies were recorded for operation.
func (m *MockMetricsCollector) LatencyCount(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Latencies[operation])
}

var (
	_ ports.DatasetSource    = (*MockDatasetSource)(nil)
	_ ports.Reporter         = (*MockReporter)(nil)
	_ ports.MetricsLogger    = (*MockMetricsLogger)(nil)
	_ ports.MetricsCollector = (*MockMetricsCollector)(nil)
)
