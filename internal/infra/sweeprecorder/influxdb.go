//go:build !gcloud

package sweeprecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const sweepMeasurement = "sweep_run"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.SweepResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "sweep result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, sweep result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)

	slog.InfoContext(ctx, "sweep result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket),
	}, nil
}

func newSweepPoint(record domain.SweepRunRecord) *write.Point {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	return influxdb2.NewPoint(
		sweepMeasurement,
		map[string]string{
			"run_id": runID,
		},
		map[string]any{
			"duration_ms":    record.Duration.Milliseconds(),
			"items_scanned":  record.ItemsScanned,
			"candidates":     record.Candidates,
			"suppressed":     record.Suppressed,
			"users_checked":  record.UsersChecked,
			"emails_sent":    record.EmailsSent,
			"emails_failed":  record.EmailsFailed,
			"owners_skipped": record.OwnersSkipped,
			"items_recorded": record.ItemsRecorded,
			"replace_count":  record.ReplaceCount,
			"warning_count":  record.WarningCount,
		},
		record.StartedAt,
	)
}

// RecordSweep never fails the sweep; write errors are logged.
func (r *influxDBRecorder) RecordSweep(ctx context.Context, record domain.SweepRunRecord) error {
	if err := r.writeAPI.WritePoint(ctx, newSweepPoint(record)); err != nil {
		slog.WarnContext(ctx, "failed to write sweep result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
