//go:build gcloud

package sweeprecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt    time.Time `bigquery:"recorded_at"`
	RunID         string    `bigquery:"run_id"`
	StartedAt     time.Time `bigquery:"started_at"`
	DurationMs    int64     `bigquery:"duration_ms"`
	ItemsScanned  int64     `bigquery:"items_scanned"`
	Candidates    int64     `bigquery:"candidates"`
	Suppressed    int64     `bigquery:"suppressed"`
	UsersChecked  int64     `bigquery:"users_checked"`
	EmailsSent    int64     `bigquery:"emails_sent"`
	EmailsFailed  int64     `bigquery:"emails_failed"`
	OwnersSkipped int64     `bigquery:"owners_skipped"`
	ItemsRecorded int64     `bigquery:"items_recorded"`
	ReplaceCount  int64     `bigquery:"replace_count"`
	WarningCount  int64     `bigquery:"warning_count"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.SweepResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "sweep result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, sweep result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, sweep result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	slog.InfoContext(ctx, "sweep result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter(),
	}, nil
}

func (r *bigQueryRecorder) RecordSweep(ctx context.Context, record domain.SweepRunRecord) error {
	row := &bigQueryRecord{
		RecordedAt:    time.Now(),
		RunID:         record.RunID,
		StartedAt:     record.StartedAt,
		DurationMs:    record.Duration.Milliseconds(),
		ItemsScanned:  int64(record.ItemsScanned),
		Candidates:    int64(record.Candidates),
		Suppressed:    int64(record.Suppressed),
		UsersChecked:  int64(record.UsersChecked),
		EmailsSent:    int64(record.EmailsSent),
		EmailsFailed:  int64(record.EmailsFailed),
		OwnersSkipped: int64(record.OwnersSkipped),
		ItemsRecorded: int64(record.ItemsRecorded),
		ReplaceCount:  int64(record.ReplaceCount),
		WarningCount:  int64(record.WarningCount),
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert sweep result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
