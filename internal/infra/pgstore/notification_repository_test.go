package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/testutil"
)

func TestNotificationRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn, cleanup := testutil.SetupPostgresContainer(ctx, t)
	defer cleanup()

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() {
		if err := Close(db); err != nil {
			t.Logf("failed to close postgres: %v", err)
		}
	}()

	repo := NewNotificationRepository(db)
	sentAt := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	key := domain.NotificationKey{OwnerID: "U", ItemID: "I", Status: domain.StatusReplace}

	exists, err := repo.ExistsSince(ctx, key, sentAt.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("ExistsSince failed: %v", err)
	}
	if exists {
		t.Fatal("expected no record before insert")
	}

	if err := repo.Insert(ctx, &domain.NotificationRecord{
		OwnerID: key.OwnerID, ItemID: key.ItemID, Status: key.Status,
		SentAt: sentAt, EmailID: "email-1", RunID: "run-1",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	tests := []struct {
		name     string
		key      domain.NotificationKey
		since    time.Time
		expected bool
	}{
		{name: "inside window", key: key, since: sentAt.Add(-7 * 24 * time.Hour), expected: true},
		{name: "boundary inclusive", key: key, since: sentAt, expected: true},
		{name: "outside window", key: key, since: sentAt.Add(time.Minute), expected: false},
		{
			name:     "other status",
			key:      domain.NotificationKey{OwnerID: "U", ItemID: "I", Status: domain.StatusWarning},
			since:    sentAt.Add(-time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsSince(ctx, tt.key, tt.since)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ExistsSince = %v, want %v", got, tt.expected)
			}
		})
	}
}
