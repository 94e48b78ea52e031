package application

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// Pipeline stage names, used as span names, log fields and metric labels.
const (
	StageLoad      = "load"
	StageSummarize = "summarize"
	StageReport    = "report"
	StageTrack     = "track"
)

// Operational metric names recorded through ports.MetricsCollector.
const (
	MetricStageDuration  = "pipeline_stage"
	MetricStageTotal     = "pipeline_stage_total"
	MetricDatasetRecords = "dataset_records"
	MetricAgreementRate  = "agreement_rate"
	MetricArtifacts      = "report_artifacts"
)

const tracerName = "judgestat/pipeline"

// RunResult is the outcome of a successful pipeline run.
type RunResult struct {
	// Run identifies the run the results were logged under.
	Run ports.RunInfo
	// Summary holds every derived statistic.
	Summary *domain.Summary
	// Artifacts lists the files produced by all reporters, in reporter order.
	Artifacts []ports.Artifact
	// Metrics are the scalar values handed to the metrics logger.
	Metrics map[string]float64
}

// Pipeline is a sequential run container: it loads a dataset, summarizes
// it, hands the summary to each reporter in the order they were added and
// finally logs metrics and artifacts to the tracker.
// Any stage error aborts the run; there are no partial results.
type Pipeline struct {
	// source supplies the dataset. It is loaded once per Run.
	source ports.DatasetSource
	// engine computes the summary.
	engine *AggregationEngine
	// summary selects the optional statistics.
	summary SummaryOptions
	// reporters run sequentially in insertion order.
	reporters []ports.Reporter
	// names tracks reporter names for O(1) duplicate detection.
	names map[string]struct{}
	// tracker receives run metrics when set.
	tracker ports.MetricsLogger
	// metrics records stage latency and outcome counters.
	metrics ports.MetricsCollector
	// run identifies the run; StartedAt is stamped by Run.
	run ports.RunInfo
	now func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithSummaryOptions overrides DefaultSummaryOptions.
func WithSummaryOptions(opts SummaryOptions) PipelineOption {
	return func(p *Pipeline) { p.summary = opts }
}

// WithMetricsLogger enables the tracking stage.
func WithMetricsLogger(l ports.MetricsLogger) PipelineOption {
	return func(p *Pipeline) { p.tracker = l }
}

// WithMetricsCollector records operational metrics for every stage.
func WithMetricsCollector(c ports.MetricsCollector) PipelineOption {
	return func(p *Pipeline) { p.metrics = c }
}

// WithRunInfo names the run. StartedAt is ignored and set when Run starts.
func WithRunInfo(project, name string) PipelineOption {
	return func(p *Pipeline) { p.run = ports.RunInfo{Project: project, Name: name} }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline over source using engine. Reporters are
// attached with AddReporter.
func NewPipeline(source ports.DatasetSource, engine *AggregationEngine, opts ...PipelineOption) *Pipeline {
	if source == nil {
		panic("pipeline: dataset source is required")
	}
	if engine == nil {
		engine = NewAggregationEngine()
	}
	p := &Pipeline{
		source:  source,
		engine:  engine,
		summary: DefaultSummaryOptions(),
		names:   make(map[string]struct{}),
		metrics: noopCollector{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddReporter appends a reporter to the report stage.
// AddReporter returns an error if the reporter is nil or if a reporter with
// the same name was already added.
func (p *Pipeline) AddReporter(r ports.Reporter) error {
	if r == nil {
		return fmt.Errorf("cannot add nil reporter to pipeline")
	}
	if _, exists := p.names[r.Name()]; exists {
		return fmt.Errorf("reporter %s already exists in pipeline", r.Name())
	}
	p.reporters = append(p.reporters, r)
	p.names[r.Name()] = struct{}{}
	return nil
}

// Reporters returns a copy of the attached reporters in execution order.
func (p *Pipeline) Reporters() []ports.Reporter {
	return append([]ports.Reporter(nil), p.reporters...)
}

// Run executes every stage once.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	run := p.run
	run.StartedAt = p.now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Pipeline.Run", trace.WithAttributes(
		attribute.String("run.project", run.Project),
		attribute.String("run.name", run.Name),
		attribute.String("dataset.source", p.source.Name()),
	))
	defer span.End()

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("run", run.Name, "source", p.source.Name()))
	res := &RunResult{Run: run}

	var ds *domain.JudgmentDataset
	err := p.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		ds, err = p.source.Load(ctx)
		return err
	})
	if err != nil {
		return p.fail(span, err)
	}
	p.metrics.RecordGauge(MetricDatasetRecords, float64(ds.Len()), map[string]string{"source": p.source.Name()})

	err = p.stage(ctx, StageSummarize, func(context.Context) error {
		var err error
		res.Summary, err = p.engine.Summarize(ds, p.summary)
		return err
	})
	if err != nil {
		return p.fail(span, err)
	}
	res.Metrics = RunMetrics(res.Summary)
	p.metrics.RecordGauge(MetricAgreementRate, res.Summary.OverallAgreement.AgreePct, map[string]string{"source": p.source.Name()})

	err = p.stage(ctx, StageReport, func(ctx context.Context) error {
		for _, r := range p.reporters {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			arts, err := r.Report(ctx, res.Summary)
			if err != nil {
				return fmt.Errorf("reporter %s: %w", r.Name(), err)
			}
			clog.FromContext(ctx).Debug("reporter finished", "reporter", r.Name(), "artifacts", len(arts))
			p.metrics.RecordHistogram(MetricArtifacts, float64(len(arts)), map[string]string{"reporter": r.Name()})
			res.Artifacts = append(res.Artifacts, arts...)
		}
		return nil
	})
	if err != nil {
		return p.fail(span, err)
	}

	if p.tracker != nil {
		err = p.stage(ctx, StageTrack, func(ctx context.Context) error {
			return p.tracker.Log(ctx, run, res.Metrics, res.Artifacts)
		})
		if err != nil {
			return p.fail(span, err)
		}
	}

	span.SetAttributes(
		attribute.Int("dataset.records", res.Summary.Records),
		attribute.Float64("agreement.rate", res.Summary.OverallAgreement.AgreePct),
		attribute.Int("artifacts", len(res.Artifacts)),
	)
	span.SetStatus(codes.Ok, "run completed")
	clog.InfoContextf(ctx, "run completed: %d records, %.1f%% agreement, %d artifacts",
		res.Summary.Records, res.Summary.OverallAgreement.AgreePct, len(res.Artifacts))
	return res, nil
}

// stage runs fn inside its own span and records its latency and outcome.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Pipeline."+name,
		trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("stage", name))
	start := p.now()
	err := fn(ctx)
	elapsed := p.now().Sub(start)

	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		clog.FromContext(ctx).Error("stage failed", "error", err, "elapsed", elapsed)
	} else {
		span.SetStatus(codes.Ok, "")
		clog.FromContext(ctx).Debug("stage finished", "elapsed", elapsed)
	}

	labels := map[string]string{"stage": name, "status": status}
	p.metrics.RecordLatency(MetricStageDuration, elapsed, labels)
	p.metrics.RecordCounter(MetricStageTotal, 1, labels)

	if err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}
	return nil
}

func (p *Pipeline) fail(span trace.Span, err error) (*RunResult, error) {
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// noopCollector discards operational metrics.
type noopCollector struct{}

func (noopCollector) RecordLatency(string, time.Duration, map[string]string) {}
func (noopCollector) RecordCounter(string, float64, map[string]string)       {}
func (noopCollector) RecordGauge(string, float64, map[string]string)         {}
func (noopCollector) RecordHistogram(string, float64, map[string]string)     {}
