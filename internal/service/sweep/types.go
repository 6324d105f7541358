package sweep

import (
	"fmt"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

const (
	DefaultClassifyWorkers = 8
	DefaultDispatchWorkers = 4
	DefaultSendTimeout     = 15 * time.Second
	DefaultLockTTL         = 10 * time.Minute
	DefaultDashboardURL    = "https://voltahome.app/dashboard"
)

type Config struct {
	ClassifyWorkers int
	DispatchWorkers int
	SendTimeout     time.Duration
	LockTTL         time.Duration
	DashboardURL    string
}

func (c Config) withDefaults() Config {
	if c.ClassifyWorkers <= 0 {
		c.ClassifyWorkers = DefaultClassifyWorkers
	}
	if c.DispatchWorkers <= 0 {
		c.DispatchWorkers = DefaultDispatchWorkers
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultLockTTL
	}
	if c.DashboardURL == "" {
		c.DashboardURL = DefaultDashboardURL
	}
	return c
}

// OwnerResult is the outcome of one owner's digest.
type OwnerResult struct {
	OwnerID       string  `json:"ownerId"`
	ItemCount     int     `json:"itemCount"`
	ReplaceCount  int     `json:"replaceCount"`
	WarningCount  int     `json:"warningCount"`
	RecordedCount int     `json:"recordedCount"`
	Outcome       Outcome `json:"outcome"`
	EmailID       string  `json:"emailId,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type Result struct {
	RunID         string        `json:"runId"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"-"`
	ItemsScanned  int           `json:"itemsScanned"`
	Candidates    int           `json:"candidates"`
	Suppressed    int           `json:"suppressed"`
	UsersChecked  int           `json:"usersChecked"`
	UsersNotified int           `json:"usersNotified"`
	EmailsSent    int           `json:"emailsSent"`
	EmailsFailed  int           `json:"emailsFailed"`
	OwnersSkipped int           `json:"ownersSkipped"`
	ItemsRecorded int           `json:"itemsRecorded"`
	Results       []OwnerResult `json:"results"`
}

func (r *Result) Message() string {
	return fmt.Sprintf("Notification check complete. %d emails sent.", r.EmailsSent)
}

func (r *Result) RunRecord() domain.SweepRunRecord {
	record := domain.SweepRunRecord{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		Duration:      r.Duration,
		ItemsScanned:  r.ItemsScanned,
		Candidates:    r.Candidates,
		Suppressed:    r.Suppressed,
		UsersChecked:  r.UsersChecked,
		EmailsSent:    r.EmailsSent,
		EmailsFailed:  r.EmailsFailed,
		OwnersSkipped: r.OwnersSkipped,
		ItemsRecorded: r.ItemsRecorded,
	}
	for _, owner := range r.Results {
		record.ReplaceCount += owner.ReplaceCount
		record.WarningCount += owner.WarningCount
	}
	return record
}

type candidate struct {
	item   *domain.MaintenanceItem
	result status.Result
}

type ownerGroup struct {
	ownerID string
	items   []candidate
}
