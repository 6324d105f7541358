package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	sweepMeterName = "voltahome.sweep"
)

type SweepMetrics struct {
	runs             metric.Int64Counter
	itemsClassified  metric.Int64Counter
	suppressed       metric.Int64Counter
	emails           metric.Int64Counter
	recordsWritten   metric.Int64Counter
	runDuration      metric.Float64Histogram
	dispatchDuration metric.Float64Histogram
}

func NewSweepMetrics() (*SweepMetrics, error) {
	meter := otel.Meter(sweepMeterName)

	runs, err := meter.Int64Counter(
		"sweep_runs_total",
		metric.WithDescription("Total number of notification sweeps by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	itemsClassified, err := meter.Int64Counter(
		"sweep_items_classified_total",
		metric.WithDescription("Items classified during sweeps by status"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	suppressed, err := meter.Int64Counter(
		"sweep_notifications_suppressed_total",
		metric.WithDescription("Candidates suppressed by the notification cooldown"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	emails, err := meter.Int64Counter(
		"sweep_emails_total",
		metric.WithDescription("Digest emails by outcome"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	recordsWritten, err := meter.Int64Counter(
		"sweep_notification_records_total",
		metric.WithDescription("Notification records written after successful sends"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"sweep_run_duration_seconds",
		metric.WithDescription("Notification sweep duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
		),
	)
	if err != nil {
		return nil, err
	}

	dispatchDuration, err := meter.Float64Histogram(
		"sweep_email_dispatch_duration_seconds",
		metric.WithDescription("Time spent sending one digest email"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	return &SweepMetrics{
		runs:             runs,
		itemsClassified:  itemsClassified,
		suppressed:       suppressed,
		emails:           emails,
		recordsWritten:   recordsWritten,
		runDuration:      runDuration,
		dispatchDuration: dispatchDuration,
	}, nil
}

func (m *SweepMetrics) RecordRun(ctx context.Context, outcome string, duration time.Duration) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *SweepMetrics) RecordClassified(ctx context.Context, status string, count int) {
	if count == 0 {
		return
	}
	m.itemsClassified.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *SweepMetrics) RecordSuppressed(ctx context.Context, count int) {
	if count == 0 {
		return
	}
	m.suppressed.Add(ctx, int64(count))
}

func (m *SweepMetrics) RecordEmail(ctx context.Context, outcome string, duration time.Duration) {
	m.emails.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	if duration > 0 {
		m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (m *SweepMetrics) RecordRecordsWritten(ctx context.Context, count int) {
	if count == 0 {
		return
	}
	m.recordsWritten.Add(ctx, int64(count))
}
