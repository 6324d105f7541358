package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const (
	sweepLockKey = "notify:sweep:lock"
)

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type sweepLock struct {
	client *redis.Client
	key    string
}

func NewSweepLock(client *redis.Client) domain.SweepLock {
	return &sweepLock{
		client: client,
		key:    sweepLockKey,
	}
}

func (l *sweepLock) Acquire(ctx context.Context, ttl time.Duration) (domain.ReleaseFunc, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, errors.Join(ErrRedisConnection, err)
	}
	if !ok {
		return nil, domain.ErrSweepInProgress
	}

	slog.DebugContext(ctx, "sweep lock acquired",
		slog.String("event", "sweep.lock.acquire"),
		slog.Duration("ttl", ttl),
	)

	release := func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrLockLost
		}
		return nil
	}

	return release, nil
}
