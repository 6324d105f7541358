package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=coordination.go -destination=coordination_mock.go -package=domain

// SendGuard claims a key once. Claim returns false when the key was already
// claimed. Release drops a claim whose follow-up write failed.
type SendGuard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ReleaseFunc releases a lock acquired through SweepLock.
type ReleaseFunc func(ctx context.Context) error

// SweepLock is a cross-instance mutual exclusion for notification sweeps.
// Acquire returns ErrSweepInProgress when another holder owns the lock.
type SweepLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (ReleaseFunc, error)
}
