package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sweepTracerName = "github.com/KasumiMercury/voltahome/internal/service/sweep"

func SweepTracer() trace.Tracer {
	return otel.Tracer(sweepTracerName)
}

func StartSweepSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.run",
		trace.WithAttributes(
			attribute.String("sweep.run_id", runID),
		),
	)
}

func StartClassifyPhaseSpan(ctx context.Context, itemCount int) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.classify_phase",
		trace.WithAttributes(
			attribute.Int("sweep.item_count", itemCount),
		),
	)
}

func StartDedupPhaseSpan(ctx context.Context, candidateCount int) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.dedup_phase",
		trace.WithAttributes(
			attribute.Int("sweep.candidate_count", candidateCount),
		),
	)
}

func StartDispatchSpan(ctx context.Context, ownerID string, itemCount int) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "sweep.dispatch",
		trace.WithAttributes(
			attribute.String("owner_id", ownerID),
			attribute.Int("sweep.item_count", itemCount),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return SweepTracer().Start(ctx, "mailer."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordPhaseResult(span trace.Span, kept, dropped int, err error) {
	span.SetAttributes(
		attribute.Int("phase.kept_count", kept),
		attribute.Int("phase.dropped_count", dropped),
	)
	SetStatusFromError(span, err)
}

func RecordSweepResult(span trace.Span, usersChecked, emailsSent, emailsFailed, itemsRecorded int, err error) {
	span.SetAttributes(
		attribute.Int("sweep.users_checked", usersChecked),
		attribute.Int("sweep.emails_sent", emailsSent),
		attribute.Int("sweep.emails_failed", emailsFailed),
		attribute.Int("sweep.items_recorded", itemsRecorded),
	)
	SetStatusFromError(span, err)
}

// SetStatusFromError records err on the span, or marks it Ok.
func SetStatusFromError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
