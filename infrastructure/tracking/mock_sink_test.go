package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahrav/judgestat/internal/ports"
)

// mockSink provides a configurable Sink for middleware and tracker tests.
type mockSink struct {
	mu sync.Mutex

	name          string
	Error         error
	UploadError   error
	ResponseDelay time.Duration
	// FailUntilAttempt fails the first N calls, then succeeds.
	FailUntilAttempt int

	CallCount      int
	Metrics        []map[string]float64
	Uploaded       []string
	CallTimestamps []time.Time
	Contexts       []context.Context
}

func newMockSink(name string) *mockSink {
	return &mockSink{name: name}
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) LogMetrics(ctx context.Context, _ ports.RunInfo, metrics map[string]float64) error {
	if err := m.call(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metrics = append(m.Metrics, metrics)
	return nil
}

func (m *mockSink) UploadArtifact(ctx context.Context, _ ports.RunInfo, a ports.Artifact) error {
	if err := m.call(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadError != nil {
		return m.UploadError
	}
	m.Uploaded = append(m.Uploaded, a.Name)
	return nil
}

func (m *mockSink) call(ctx context.Context) error {
	m.mu.Lock()
	m.CallCount++
	count := m.CallCount
	m.CallTimestamps = append(m.CallTimestamps, time.Now())
	m.Contexts = append(m.Contexts, ctx)
	delay := m.ResponseDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.FailUntilAttempt > 0 && count <= m.FailUntilAttempt {
		if m.Error != nil {
			return m.Error
		}
		return errors.New("simulated failure")
	}
	if m.FailUntilAttempt == 0 && m.Error != nil {
		return m.Error
	}
	return nil
}

func (m *mockSink) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

var testRun = ports.RunInfo{Project: "arena", Name: "nightly"}
