package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const (
	DefaultCooldown = 7 * 24 * time.Hour

	// guardSlack keeps the per-day guard alive past the end of the cooldown.
	guardSlack = 24 * time.Hour
)

// Engine decides whether an (owner, item, status) alert may be sent and
// records sends. Each call holds a per-key lock, but a check and the record
// that follows it are separate calls; callers that need the pair to be atomic
// serialize them, as the sweep does with its single-flight and lock. The
// per-day send guard stops a second record for the same key and day.
type Engine struct {
	records  domain.NotificationRecordRepository
	guard    domain.SendGuard
	cooldown time.Duration
	now      func() time.Time
	locks    *keyedMutex
}

// NewEngine builds an engine. guard may be nil; a non-positive cooldown
// means DefaultCooldown.
func NewEngine(
	records domain.NotificationRecordRepository,
	guard domain.SendGuard,
	cooldown time.Duration,
	now func() time.Time,
) *Engine {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		records:  records,
		guard:    guard,
		cooldown: cooldown,
		now:      now,
		locks:    newKeyedMutex(),
	}
}

// ShouldNotify reports whether no record exists for the exact key with
// sentAt >= now - cooldown. Good never notifies.
func (e *Engine) ShouldNotify(ctx context.Context, ownerID, itemID string, status domain.Status) (bool, error) {
	if !status.IsNotifiable() {
		return false, nil
	}

	key := domain.NotificationKey{OwnerID: ownerID, ItemID: itemID, Status: status}
	unlock := e.locks.Lock(key.String())
	defer unlock()

	since := e.now().Add(-e.cooldown)
	exists, err := e.records.ExistsSince(ctx, key, since)
	if err != nil {
		return false, err
	}

	if exists {
		slog.DebugContext(ctx, "notification suppressed by cooldown",
			slog.String("owner_id", ownerID),
			slog.String("item_id", itemID),
			slog.String("status", status.String()),
		)
	}

	return !exists, nil
}

// RecordSent appends a notification record. It returns false without writing
// when the same key was already recorded for the UTC day of record.SentAt.
// A failed insert gives the day claim back so the next sweep can record it.
func (e *Engine) RecordSent(ctx context.Context, record domain.NotificationRecord) (bool, error) {
	if record.SentAt.IsZero() {
		record.SentAt = e.now()
	}

	key := record.Key()
	unlock := e.locks.Lock(key.String())
	defer unlock()

	bucket := key.DayBucket(record.SentAt)
	claimed := false
	if e.guard != nil {
		var err error
		claimed, err = e.guard.Claim(ctx, bucket, e.cooldown+guardSlack)
		if err != nil {
			slog.WarnContext(ctx, "send guard unavailable, recording without it",
				slog.String("key", key.String()),
				slog.String("error", err.Error()),
			)
		} else if !claimed {
			slog.InfoContext(ctx, "duplicate notification record skipped",
				slog.String("key", key.String()),
				slog.String("run_id", record.RunID),
			)
			return false, nil
		}
	}

	if err := e.records.Insert(ctx, &record); err != nil {
		if claimed {
			e.releaseClaim(ctx, bucket, key)
		}
		return false, err
	}

	return true, nil
}

func (e *Engine) releaseClaim(ctx context.Context, bucket string, key domain.NotificationKey) {
	if err := e.guard.Release(context.WithoutCancel(ctx), bucket); err != nil {
		slog.WarnContext(ctx, "failed to release send guard after insert error",
			slog.String("event", "dedup.guard.release.fail"),
			slog.String("key", key.String()),
			slog.String("error", err.Error()),
		)
	}
}
