package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/testutil"
)

func TestSweepLockAcquireRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	lock := NewSweepLock(client)

	release, err := lock.Acquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := lock.Acquire(ctx, time.Minute); !errors.Is(err, domain.ErrSweepInProgress) {
		t.Errorf("second acquire: expected ErrSweepInProgress, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	release2, err := lock.Acquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	if err := release2(ctx); err != nil {
		t.Errorf("release failed: %v", err)
	}
}

func TestSweepLockReleaseKeepsForeignLock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	lock := NewSweepLock(client)

	release, err := lock.Acquire(ctx, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate expiry followed by another instance taking over.
	if err := client.Set(ctx, sweepLockKey, "other-instance", time.Minute).Err(); err != nil {
		t.Fatalf("failed to set up test data: %v", err)
	}

	if err := release(ctx); !errors.Is(err, ErrLockLost) {
		t.Errorf("expected ErrLockLost, got %v", err)
	}

	val, err := client.Get(ctx, sweepLockKey).Result()
	if err != nil {
		t.Fatalf("failed to read lock: %v", err)
	}
	if val != "other-instance" {
		t.Errorf("foreign lock was overwritten: %q", val)
	}
}
