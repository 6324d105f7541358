package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/observability/metrics"
	"github.com/KasumiMercury/voltahome/internal/observability/tracing"
	"github.com/KasumiMercury/voltahome/internal/service/dedup"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

const singleflightKey = "sweep"

type Service struct {
	items        domain.ItemRepository
	users        domain.UserDirectory
	mailer       domain.Mailer
	dedup        *dedup.Engine
	calculator   *status.Calculator
	lock         domain.SweepLock
	recorder     domain.SweepResultRecorder
	sweepMetrics *metrics.SweepMetrics
	cfg          Config

	group    singleflight.Group
	newRunID func() string
}

// NewService wires the sweep. lock, recorder and sweepMetrics may be nil.
func NewService(
	items domain.ItemRepository,
	users domain.UserDirectory,
	mailer domain.Mailer,
	dedupEngine *dedup.Engine,
	calculator *status.Calculator,
	lock domain.SweepLock,
	recorder domain.SweepResultRecorder,
	sweepMetrics *metrics.SweepMetrics,
	cfg Config,
) *Service {
	return &Service{
		items:        items,
		users:        users,
		mailer:       mailer,
		dedup:        dedupEngine,
		calculator:   calculator,
		lock:         lock,
		recorder:     recorder,
		sweepMetrics: sweepMetrics,
		cfg:          cfg.withDefaults(),
		newRunID:     uuid.NewString,
	}
}

// Run executes one sweep. Concurrent callers in this process share the same
// execution; a sweep held by another instance yields domain.ErrSweepInProgress.
// The sweep ignores cancellation of ctx once started.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	detached := context.WithoutCancel(ctx)

	v, err, shared := s.group.Do(singleflightKey, func() (any, error) {
		return s.run(detached)
	})
	if shared {
		slog.InfoContext(ctx, "joined in-flight notification sweep")
	}
	if err != nil {
		return nil, err
	}

	return v.(*Result), nil
}

func (s *Service) run(ctx context.Context) (result *Result, err error) {
	runID := s.newRunID()
	startedAt := s.calculator.Now()
	start := time.Now()

	ctx, span := tracing.StartSweepSpan(ctx, runID)
	defer span.End()

	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, domain.ErrSweepInProgress):
			outcome = "conflict"
		case err != nil:
			outcome = "error"
		}
		if s.sweepMetrics != nil {
			s.sweepMetrics.RecordRun(ctx, outcome, time.Since(start))
		}
		if result != nil {
			tracing.RecordSweepResult(span, result.UsersChecked, result.EmailsSent, result.EmailsFailed, result.ItemsRecorded, err)
		} else {
			tracing.SetStatusFromError(span, err)
		}
	}()

	release, err := s.acquireLock(ctx, runID)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "failed to release sweep lock",
					slog.String("run_id", runID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	slog.InfoContext(ctx, "starting notification sweep",
		slog.String("run_id", runID),
	)

	items, err := s.items.ListAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list items",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("list items: %w", err)
	}

	candidates, err := s.classify(ctx, items)
	if err != nil {
		return nil, err
	}

	eligible, err := s.filterCooldown(ctx, candidates)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check notification history",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("check notification history: %w", err)
	}

	groups := groupByOwner(eligible)

	result = &Result{
		RunID:        runID,
		StartedAt:    startedAt,
		ItemsScanned: len(items),
		Candidates:   len(candidates),
		Suppressed:   len(candidates) - len(eligible),
		UsersChecked: len(groups),
		Results:      make([]OwnerResult, len(groups)),
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.DispatchWorkers)
	for i, group := range groups {
		g.Go(func() error {
			result.Results[i] = s.dispatch(ctx, runID, group)
			return nil
		})
	}
	_ = g.Wait()

	for _, owner := range result.Results {
		switch owner.Outcome {
		case OutcomeSent:
			result.EmailsSent++
			result.UsersNotified++
		case OutcomeFailed:
			result.EmailsFailed++
		case OutcomeSkipped:
			result.OwnersSkipped++
		}
		result.ItemsRecorded += owner.RecordedCount
	}
	result.Duration = time.Since(start)

	if s.sweepMetrics != nil {
		s.sweepMetrics.RecordSuppressed(ctx, result.Suppressed)
		s.sweepMetrics.RecordRecordsWritten(ctx, result.ItemsRecorded)
	}

	s.recordRun(ctx, result)

	slog.InfoContext(ctx, "notification sweep completed",
		slog.String("run_id", runID),
		slog.Int("items_scanned", result.ItemsScanned),
		slog.Int("candidates", result.Candidates),
		slog.Int("suppressed", result.Suppressed),
		slog.Int("users_checked", result.UsersChecked),
		slog.Int("emails_sent", result.EmailsSent),
		slog.Int("emails_failed", result.EmailsFailed),
		slog.Int("owners_skipped", result.OwnersSkipped),
		slog.Int("items_recorded", result.ItemsRecorded),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

func (s *Service) acquireLock(ctx context.Context, runID string) (domain.ReleaseFunc, error) {
	if s.lock == nil {
		return nil, nil
	}

	release, err := s.lock.Acquire(ctx, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrSweepInProgress) {
			slog.WarnContext(ctx, "notification sweep already running elsewhere",
				slog.String("run_id", runID),
			)
			return nil, err
		}
		// Fail open: a Redis outage must not stop notifications.
		slog.WarnContext(ctx, "sweep lock unavailable, continuing without it",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	return release, nil
}

func (s *Service) classify(ctx context.Context, items []*domain.MaintenanceItem) ([]candidate, error) {
	ctx, span := tracing.StartClassifyPhaseSpan(ctx, len(items))
	defer span.End()

	results := make([]status.Result, len(items))

	var g errgroup.Group
	g.SetLimit(s.cfg.ClassifyWorkers)
	for i, item := range items {
		g.Go(func() error {
			results[i] = s.calculator.ClassifyItem(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.SetStatusFromError(span, err)
		return nil, err
	}

	counts := make(map[domain.Status]int, 3)
	candidates := make([]candidate, 0)
	for i, item := range items {
		counts[results[i].Status]++
		if results[i].Status.IsNotifiable() {
			candidates = append(candidates, candidate{item: item, result: results[i]})
		}
	}

	if s.sweepMetrics != nil {
		for st, n := range counts {
			s.sweepMetrics.RecordClassified(ctx, st.String(), n)
		}
	}

	slog.DebugContext(ctx, "classified items",
		slog.Int("total", len(items)),
		slog.Int("good", counts[domain.StatusGood]),
		slog.Int("warning", counts[domain.StatusWarning]),
		slog.Int("replace", counts[domain.StatusReplace]),
	)

	tracing.RecordPhaseResult(span, len(candidates), len(items)-len(candidates), nil)
	return candidates, nil
}

func (s *Service) filterCooldown(ctx context.Context, candidates []candidate) ([]candidate, error) {
	ctx, span := tracing.StartDedupPhaseSpan(ctx, len(candidates))
	defer span.End()

	keep := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ClassifyWorkers)
	for i, c := range candidates {
		g.Go(func() error {
			ok, err := s.dedup.ShouldNotify(gctx, c.item.OwnerID, c.item.ID, c.result.Status)
			if err != nil {
				return err
			}
			keep[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.SetStatusFromError(span, err)
		return nil, err
	}

	eligible := make([]candidate, 0, len(candidates))
	for i, c := range candidates {
		if keep[i] {
			eligible = append(eligible, c)
		}
	}

	tracing.RecordPhaseResult(span, len(eligible), len(candidates)-len(eligible), nil)
	return eligible, nil
}

func groupByOwner(candidates []candidate) []ownerGroup {
	index := make(map[string]int)
	groups := make([]ownerGroup, 0)
	for _, c := range candidates {
		i, ok := index[c.item.OwnerID]
		if !ok {
			i = len(groups)
			index[c.item.OwnerID] = i
			groups = append(groups, ownerGroup{ownerID: c.item.OwnerID})
		}
		groups[i].items = append(groups[i].items, c)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ownerID < groups[j].ownerID
	})
	return groups
}

// dispatch sends one owner's digest and records every item in it. It never
// returns an error; failures are reported in the OwnerResult.
func (s *Service) dispatch(ctx context.Context, runID string, group ownerGroup) OwnerResult {
	ctx, span := tracing.StartDispatchSpan(ctx, group.ownerID, len(group.items))
	defer span.End()

	res := OwnerResult{
		OwnerID:   group.ownerID,
		ItemCount: len(group.items),
	}
	for _, c := range group.items {
		if c.result.Status == domain.StatusReplace {
			res.ReplaceCount++
		} else {
			res.WarningCount++
		}
	}

	fail := func(msg string, err error) OwnerResult {
		slog.ErrorContext(ctx, msg,
			slog.String("run_id", runID),
			slog.String("owner_id", group.ownerID),
			slog.String("error", err.Error()),
		)
		tracing.SetStatusFromError(span, err)
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	email, err := s.users.ResolveEmail(ctx, group.ownerID)
	if err != nil {
		return fail("failed to resolve owner email", err)
	}
	if email == "" {
		slog.InfoContext(ctx, "owner has no email, skipping digest",
			slog.String("run_id", runID),
			slog.String("owner_id", group.ownerID),
		)
		res.Outcome = OutcomeSkipped
		return res
	}

	msg, err := newDigest(email, s.cfg.DashboardURL, group.items).Render()
	if err != nil {
		return fail("failed to render digest", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	sendStart := time.Now()
	receipt, err := s.mailer.Send(sendCtx, msg)
	cancel()
	if err != nil {
		if s.sweepMetrics != nil {
			s.sweepMetrics.RecordEmail(ctx, string(OutcomeFailed), time.Since(sendStart))
		}
		return fail("failed to send digest", err)
	}
	if s.sweepMetrics != nil {
		s.sweepMetrics.RecordEmail(ctx, string(OutcomeSent), time.Since(sendStart))
	}

	res.Outcome = OutcomeSent
	res.EmailID = receipt.ID

	sentAt := s.calculator.Now()
	for _, c := range group.items {
		recorded, err := s.dedup.RecordSent(ctx, domain.NotificationRecord{
			OwnerID: group.ownerID,
			ItemID:  c.item.ID,
			Status:  c.result.Status,
			SentAt:  sentAt,
			EmailID: receipt.ID,
			RunID:   runID,
		})
		if err != nil {
			// The email is already out; a missing record only risks one repeat.
			slog.ErrorContext(ctx, "failed to record notification",
				slog.String("run_id", runID),
				slog.String("owner_id", group.ownerID),
				slog.String("item_id", c.item.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if recorded {
			res.RecordedCount++
		}
	}

	slog.InfoContext(ctx, "digest sent",
		slog.String("run_id", runID),
		slog.String("owner_id", group.ownerID),
		slog.String("email_id", receipt.ID),
		slog.Int("replace_count", res.ReplaceCount),
		slog.Int("warning_count", res.WarningCount),
	)

	return res
}

func (s *Service) recordRun(ctx context.Context, result *Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSweep(ctx, result.RunRecord()); err != nil {
		slog.WarnContext(ctx, "failed to record sweep result",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()),
		)
	}
}
