package tracking

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/judgestat/internal/ports"
)

// tracedSink wraps every backend call in an OpenTelemetry span.
type tracedSink struct {
	next   Sink
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that adds distributed tracing to
// sink calls using the global tracer provider.
func TracingMiddleware(serviceName string) Middleware {
	tracer := otel.Tracer(serviceName)
	return func(next Sink) Sink {
		return &tracedSink{next: next, tracer: tracer}
	}
}

func (t *tracedSink) Name() string { return t.next.Name() }

func (t *tracedSink) LogMetrics(ctx context.Context, run ports.RunInfo, metrics map[string]float64) error {
	ctx, span := t.start(ctx, OpLogMetrics, run, attribute.Int("tracking.metrics", len(metrics)))
	defer span.End()
	return t.finish(span, t.next.LogMetrics(ctx, run, metrics))
}

func (t *tracedSink) UploadArtifact(ctx context.Context, run ports.RunInfo, artifact ports.Artifact) error {
	ctx, span := t.start(ctx, OpUploadArtifact, run,
		attribute.String("artifact.name", artifact.Name),
		attribute.String("artifact.content_type", artifact.ContentType),
	)
	defer span.End()
	return t.finish(span, t.next.UploadArtifact(ctx, run, artifact))
}

func (t *tracedSink) start(ctx context.Context, op string, run ports.RunInfo, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "tracking."+op)
	span.SetAttributes(
		attribute.String("tracking.sink", t.next.Name()),
		attribute.String("run.project", run.Project),
		attribute.String("run.name", run.Name),
	)
	span.SetAttributes(attrs...)
	return ctx, span
}

func (t *tracedSink) finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
