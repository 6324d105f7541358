package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const analyticsMeterName = "voltahome.analytics"

type AnalyticsMetrics struct {
	ingested metric.Int64Counter
}

func NewAnalyticsMetrics() (*AnalyticsMetrics, error) {
	meter := otel.Meter(analyticsMeterName)

	ingested, err := meter.Int64Counter(
		"analytics_detection_logs_total",
		metric.WithDescription("Detection telemetry entries by ingestion outcome"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &AnalyticsMetrics{ingested: ingested}, nil
}

// RecordIngest counts an entry as written, dropped or failed.
func (m *AnalyticsMetrics) RecordIngest(ctx context.Context, outcome string) {
	m.ingested.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
