package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=sweep_result_recorder.go -destination=sweep_result_recorder_mock.go -package=domain

// SweepRunRecord summarizes one notification sweep for offline analysis.
type SweepRunRecord struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	ItemsScanned  int
	Candidates    int
	Suppressed    int
	UsersChecked  int
	EmailsSent    int
	EmailsFailed  int
	OwnersSkipped int
	ItemsRecorded int
	ReplaceCount  int
	WarningCount  int
}

type SweepResultRecorder interface {
	RecordSweep(ctx context.Context, record SweepRunRecord) error
	Close() error
}
