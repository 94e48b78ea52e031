package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
	"github.com/ahrav/judgestat/internal/testutils"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestPipeline_Run(t *testing.T) {
	source := &testutils.MockDatasetSource{Records: testutils.ExampleRecords()}
	console := &testutils.MockReporter{ReporterName: "console"}
	charts := &testutils.MockReporter{
		ReporterName: "png",
		Artifacts: []ports.Artifact{
			{Name: "decision_matrix", Path: "out/decision_matrix.png", ContentType: "image/png"},
		},
	}
	tracker := &testutils.MockMetricsLogger{}
	collector := testutils.NewMockMetricsCollector()

	p := NewPipeline(source, NewAggregationEngine(),
		WithRunInfo("arena", "nightly"),
		WithMetricsLogger(tracker),
		WithMetricsCollector(collector),
		WithClock(fixedClock()),
	)
	require.NoError(t, p.AddReporter(console))
	require.NoError(t, p.AddReporter(charts))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Summary.Records)
	assert.Len(t, res.Artifacts, 1)
	assert.InDelta(t, 200.0/3, res.Metrics[MetricOverallAgreementRate], 1e-9)
	assert.Equal(t, "nightly", res.Run.Name)
	assert.Equal(t, fixedClock()(), res.Run.StartedAt)

	require.Len(t, console.Summaries(), 1)
	assert.Same(t, res.Summary, console.Summaries()[0])

	runs := tracker.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "arena", runs[0].Run.Project)
	assert.Equal(t, res.Metrics, runs[0].Metrics)
	assert.Equal(t, res.Artifacts, runs[0].Artifacts)

	assert.Equal(t, 4.0, collector.Counter(MetricStageTotal))
	assert.Equal(t, 4, collector.LatencyCount(MetricStageDuration))
	assert.Equal(t, 3.0, collector.Gauges[MetricDatasetRecords])
}

func TestPipeline_RunWithoutTracker(t *testing.T) {
	collector := testutils.NewMockMetricsCollector()
	p := NewPipeline(&testutils.MockDatasetSource{Records: testutils.ExampleRecords()}, nil,
		WithMetricsCollector(collector))

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Equal(t, 2.0, collector.Counter(MetricStageTotal))
}

func TestPipeline_RunErrors(t *testing.T) {
	loadErr := domain.NewDatasetLoadError("filtered_data.csv", 0, "", errors.New("no such file"))

	tests := []struct {
		name      string
		source    *testutils.MockDatasetSource
		summary   SummaryOptions
		reporter  *testutils.MockReporter
		tracker   *testutils.MockMetricsLogger
		wantIs    error
		wantStage string
	}{
		{
			name:      "load failure",
			source:    &testutils.MockDatasetSource{Err: loadErr},
			summary:   DefaultSummaryOptions(),
			wantIs:    loadErr,
			wantStage: "load stage",
		},
		{
			name:      "empty dataset",
			source:    &testutils.MockDatasetSource{},
			summary:   DefaultSummaryOptions(),
			wantIs:    domain.ErrEmptyDataset,
			wantStage: "summarize stage",
		},
		{
			name: "degenerate independence table",
			source: &testutils.MockDatasetSource{Records: []domain.JudgmentRecord{
				{Category: "only", HumanWinner: "A", GPTWinner: "A"},
			}},
			summary:   DefaultSummaryOptions(),
			wantIs:    domain.ErrInsufficientData,
			wantStage: "summarize stage",
		},
		{
			name:      "reporter failure",
			source:    &testutils.MockDatasetSource{Records: testutils.ExampleRecords()},
			summary:   DefaultSummaryOptions(),
			reporter:  &testutils.MockReporter{Err: ports.NewRenderError("png", "decision_matrix", errors.New("disk full"))},
			wantStage: "report stage",
		},
		{
			name:      "tracker failure",
			source:    &testutils.MockDatasetSource{Records: testutils.ExampleRecords()},
			summary:   DefaultSummaryOptions(),
			tracker:   &testutils.MockMetricsLogger{Err: ports.ErrServiceUnavailable},
			wantIs:    ports.ErrServiceUnavailable,
			wantStage: "track stage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := testutils.NewMockMetricsCollector()
			opts := []PipelineOption{WithSummaryOptions(tt.summary), WithMetricsCollector(collector)}
			if tt.tracker != nil {
				opts = append(opts, WithMetricsLogger(tt.tracker))
			}
			p := NewPipeline(tt.source, NewAggregationEngine(), opts...)
			if tt.reporter != nil {
				require.NoError(t, p.AddReporter(tt.reporter))
			}

			res, err := p.Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), tt.wantStage)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.NotEmpty(t, collector.Latencies[MetricStageDuration])
		})
	}
}

func TestPipeline_SingleCategoryWithoutIndependenceTest(t *testing.T) {
	source := &testutils.MockDatasetSource{Records: []domain.JudgmentRecord{
		{Category: "only", HumanWinner: "A", GPTWinner: "A"},
	}}
	p := NewPipeline(source, nil, WithSummaryOptions(SummaryOptions{}))

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Summary.Independence)
	assert.Equal(t, 100.0, res.Summary.OverallAgreement.AgreePct)
}

func TestPipeline_CanceledContextStopsReporting(t *testing.T) {
	reporter := &testutils.MockReporter{}
	p := NewPipeline(&testutils.MockDatasetSource{Records: testutils.ExampleRecords()}, nil)
	require.NoError(t, p.AddReporter(reporter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reporter.Summaries())
}

func TestPipeline_AddReporter(t *testing.T) {
	p := NewPipeline(&testutils.MockDatasetSource{}, nil)

	require.Error(t, p.AddReporter(nil))
	require.NoError(t, p.AddReporter(&testutils.MockReporter{ReporterName: "console"}))
	err := p.AddReporter(&testutils.MockReporter{ReporterName: "console"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Len(t, p.Reporters(), 1)
}
