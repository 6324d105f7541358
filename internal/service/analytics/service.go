package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/observability/metrics"
)

const (
	DefaultDays = 7
	MaxDays     = 365
	topN        = 10

	outcomeWritten = "written"
	outcomeDropped = "dropped"
	outcomeFailed  = "failed"
)

type Config struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	return c
}

// Service ingests detection telemetry best effort and serves the admin summary.
// Ingest never blocks: entries that do not fit in the queue are dropped.
type Service struct {
	repo    domain.DetectionLogRepository
	metrics *metrics.AnalyticsMetrics
	cfg     Config
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan *domain.DetectionLog
	wg     sync.WaitGroup

	dropped atomic.Int64
}

func NewService(repo domain.DetectionLogRepository, analyticsMetrics *metrics.AnalyticsMetrics, cfg Config) *Service {
	cfg = cfg.withDefaults()

	s := &Service{
		repo:    repo,
		metrics: analyticsMetrics,
		cfg:     cfg,
		now:     time.Now,
		queue:   make(chan *domain.DetectionLog, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

func (s *Service) worker() {
	defer s.wg.Done()

	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		err := s.repo.Insert(ctx, entry)
		cancel()

		if err != nil {
			slog.Warn("failed to store detection log",
				slog.String("event", "analytics.write_failed"),
				slog.String("session_id", entry.SessionID),
				slog.String("error", err.Error()),
			)
			s.record(outcomeFailed)
			continue
		}
		s.record(outcomeWritten)
	}
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordIngest(context.Background(), outcome)
	}
}

// Ingest stamps the entry and hands it to the write queue. It reports whether
// the entry was accepted.
func (s *Service) Ingest(ctx context.Context, entry *domain.DetectionLog) bool {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(ctx, entry)
		return false
	}

	select {
	case s.queue <- entry:
		return true
	default:
		s.drop(ctx, entry)
		return false
	}
}

func (s *Service) drop(ctx context.Context, entry *domain.DetectionLog) {
	total := s.dropped.Add(1)
	s.record(outcomeDropped)

	// Log the first drop and then every hundredth to keep bursts quiet.
	if total == 1 || total%100 == 0 {
		slog.WarnContext(ctx, "detection log dropped",
			slog.String("event", "analytics.dropped"),
			slog.String("session_id", entry.SessionID),
			slog.Int64("dropped_total", total),
		)
	}
}

// Dropped returns the number of entries discarded since start.
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// Shutdown stops accepting entries and waits for queued ones to be written.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("analytics drain interrupted with %d entries queued: %w", len(s.queue), ctx.Err())
	}
}

// ParseDays reads the days query value. Empty means DefaultDays.
func ParseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDays, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > MaxDays {
		return 0, fmt.Errorf("%w: days must be an integer between 1 and %d", domain.ErrInvalidInput, MaxDays)
	}
	return days, nil
}

type DeviceTypeSummary struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type CocoClassSummary struct {
	Class         string `json:"class"`
	Count         int64  `json:"count"`
	AvgConfidence int    `json:"avgConfidence"`
}

type Overview struct {
	TotalDetections  int64  `json:"totalDetections"`
	AISuccessRate    int    `json:"aiSuccessRate"`
	AvgInferenceTime int    `json:"avgInferenceTime"`
	DateRange        string `json:"dateRange"`
}

type Summary struct {
	Summary     Overview            `json:"summary"`
	DeviceTypes []DeviceTypeSummary `json:"deviceTypes"`
	CocoClasses []CocoClassSummary  `json:"cocoClasses"`
}

func (s *Service) Summary(ctx context.Context, days int) (*Summary, error) {
	if days < 1 || days > MaxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidInput, MaxDays)
	}

	since := s.now().AddDate(0, 0, -days)
	agg, err := s.repo.Aggregate(ctx, since, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate detection logs: %w", err)
	}

	return buildSummary(agg, days), nil
}

func buildSummary(agg *domain.DetectionAggregate, days int) *Summary {
	out := &Summary{
		Summary: Overview{
			TotalDetections:  agg.TotalDetections,
			AvgInferenceTime: roundHalfUp(agg.AvgInferenceTime),
			DateRange:        fmt.Sprintf("Last %d days", days),
		},
		DeviceTypes: make([]DeviceTypeSummary, 0, len(agg.DeviceTypes)),
		CocoClasses: make([]CocoClassSummary, 0, len(agg.CocoClasses)),
	}

	if agg.AIEvaluated > 0 {
		out.Summary.AISuccessRate = roundHalfUp(100 * float64(agg.AIMatched) / float64(agg.AIEvaluated))
	}

	for _, d := range agg.DeviceTypes {
		label := d.Label
		if label == "" {
			label = d.Type
		}
		out.DeviceTypes = append(out.DeviceTypes, DeviceTypeSummary{Type: d.Type, Label: label, Count: d.Count})
	}

	for _, c := range agg.CocoClasses {
		out.CocoClasses = append(out.CocoClasses, CocoClassSummary{
			Class:         c.Class,
			Count:         c.Count,
			AvgConfidence: roundHalfUp(c.AvgScore * 100),
		})
	}

	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
