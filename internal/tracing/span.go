package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartTrialSpan starts a span covering one offered-rate trial.
func StartTrialSpan(ctx context.Context, tracer trace.Tracer, runID string, threads int, offeredRPS float64) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("trial %.0f rps", offeredRPS),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("blockfire.run_id", runID),
		attribute.Int("blockfire.threads", threads),
		attribute.Float64("blockfire.offered_rps", offeredRPS),
	)
	return ctx, span
}

// EndTrialSpan finishes a trial span, recording outcome counters and error
// status if applicable.
func EndTrialSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
