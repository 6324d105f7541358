package sweep

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
	"github.com/KasumiMercury/voltahome/internal/service/dedup"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
}

type testDeps struct {
	items   *domain.MockItemRepository
	users   *domain.MockUserDirectory
	mailer  *domain.MockMailer
	records *domain.MockNotificationRecordRepository
	lock    *domain.MockSweepLock
}

func newTestService(t *testing.T, withLock bool) (*Service, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	deps := testDeps{
		items:   domain.NewMockItemRepository(ctrl),
		users:   domain.NewMockUserDirectory(ctrl),
		mailer:  domain.NewMockMailer(ctrl),
		records: domain.NewMockNotificationRecordRepository(ctrl),
	}

	clock := func() time.Time { return testNow }
	calc := status.NewCalculator(catalog.Default(), time.UTC, clock)
	engine := dedup.NewEngine(deps.records, nil, dedup.DefaultCooldown, clock)

	var lock domain.SweepLock
	if withLock {
		deps.lock = domain.NewMockSweepLock(ctrl)
		lock = deps.lock
	}

	svc := NewService(deps.items, deps.users, deps.mailer, engine, calc, lock, nil, nil, Config{})
	svc.newRunID = func() string { return "run-1" }
	return svc, deps
}

func TestRunPartialFailure(t *testing.T) {
	svc, deps := newTestService(t, false)
	ctx := context.Background()

	items := []*domain.MaintenanceItem{
		{ID: "a1", OwnerID: "owner-a", Name: "Smoke alarm", ItemType: "9V", DateLastServiced: daysAgo(300), ExpectedDurationDays: 365},
		{ID: "b1", OwnerID: "owner-b", Name: "Remote", ItemType: "AAA", DateLastServiced: daysAgo(70), ExpectedDurationDays: 120},
		{ID: "b2", OwnerID: "owner-b", Name: "Clock", ItemType: "AA", DateLastServiced: daysAgo(10), ExpectedDurationDays: 180},
	}

	deps.items.EXPECT().ListAll(gomock.Any()).Return(items, nil)
	deps.records.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "owner-a").Return("a@example.com", nil)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "owner-b").Return("b@example.com", nil)

	deps.mailer.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.Message) (domain.Receipt, error) {
			if msg.To == "a@example.com" {
				return domain.Receipt{}, errors.New("provider rejected")
			}
			return domain.Receipt{ID: "email-b"}, nil
		}).
		Times(2)

	deps.records.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *domain.NotificationRecord) error {
			if record.OwnerID != "owner-b" || record.ItemID != "b1" {
				t.Errorf("unexpected record for %s/%s", record.OwnerID, record.ItemID)
			}
			if record.Status != domain.StatusWarning {
				t.Errorf("status = %s, want warning", record.Status)
			}
			if record.EmailID != "email-b" || record.RunID != "run-1" {
				t.Errorf("record metadata = %q/%q", record.EmailID, record.RunID)
			}
			if !record.SentAt.Equal(testNow) {
				t.Errorf("sentAt = %s, want %s", record.SentAt, testNow)
			}
			return nil
		}).
		Times(1)

	result, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EmailsSent != 1 {
		t.Errorf("EmailsSent = %d, want 1", result.EmailsSent)
	}
	if result.EmailsFailed != 1 {
		t.Errorf("EmailsFailed = %d, want 1", result.EmailsFailed)
	}
	if result.UsersChecked != 2 {
		t.Errorf("UsersChecked = %d, want 2", result.UsersChecked)
	}
	if result.ItemsRecorded != 1 {
		t.Errorf("ItemsRecorded = %d, want 1", result.ItemsRecorded)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d owner results, want 2", len(result.Results))
	}
	if got := result.Results[0]; got.OwnerID != "owner-a" || got.Outcome != OutcomeFailed || got.Error == "" {
		t.Errorf("owner-a result = %+v, want failed with error", got)
	}
	if got := result.Results[1]; got.OwnerID != "owner-b" || got.Outcome != OutcomeSent || got.EmailID != "email-b" {
		t.Errorf("owner-b result = %+v, want sent", got)
	}
}

func TestRunSkipsGoodAndSuppressedItems(t *testing.T) {
	svc, deps := newTestService(t, false)

	items := []*domain.MaintenanceItem{
		{ID: "good", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(5), ExpectedDurationDays: 180},
		{ID: "recent", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(150), ExpectedDurationDays: 180},
	}

	deps.items.EXPECT().ListAll(gomock.Any()).Return(items, nil)
	deps.records.EXPECT().
		ExistsSince(gomock.Any(), domain.NotificationKey{OwnerID: "owner-a", ItemID: "recent", Status: domain.StatusReplace}, testNow.Add(-dedup.DefaultCooldown)).
		Return(true, nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Candidates != 1 || result.Suppressed != 1 {
		t.Errorf("candidates/suppressed = %d/%d, want 1/1", result.Candidates, result.Suppressed)
	}
	if result.UsersChecked != 0 || result.EmailsSent != 0 {
		t.Errorf("unexpected dispatch: %+v", result)
	}
}

func TestRunOverdueItemEndToEnd(t *testing.T) {
	svc, deps := newTestService(t, false)

	item := &domain.MaintenanceItem{ID: "i1", OwnerID: "u1", Name: "Thermostat", ItemType: "AA", DateLastServiced: daysAgo(200), ExpectedDurationDays: 180}

	deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{item}, nil)
	deps.records.EXPECT().
		ExistsSince(gomock.Any(), domain.NotificationKey{OwnerID: "u1", ItemID: "i1", Status: domain.StatusReplace}, gomock.Any()).
		Return(false, nil)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "u1").Return("u1@example.com", nil)
	deps.mailer.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.Message) (domain.Receipt, error) {
			if !strings.HasPrefix(msg.Subject, "🔴 VoltaHome Alert: 1 device(s)") {
				t.Errorf("subject = %q", msg.Subject)
			}
			if !strings.Contains(msg.HTML, "200 days since last service") || !strings.Contains(msg.HTML, "111% used") {
				t.Errorf("digest body missing overdue details:\n%s", msg.HTML)
			}
			return domain.Receipt{ID: "email-1"}, nil
		})
	deps.records.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmailsSent != 1 || result.ItemsRecorded != 1 {
		t.Errorf("result = %+v, want one email and one record", result)
	}
	if result.Results[0].ReplaceCount != 1 {
		t.Errorf("ReplaceCount = %d, want 1", result.Results[0].ReplaceCount)
	}
	if result.Message() != "Notification check complete. 1 emails sent." {
		t.Errorf("Message = %q", result.Message())
	}
}

func TestRunOwnerWithoutEmailIsSkipped(t *testing.T) {
	svc, deps := newTestService(t, false)

	deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{
		{ID: "i1", OwnerID: "ghost", ItemType: "AA", DateLastServiced: daysAgo(170), ExpectedDurationDays: 180},
	}, nil)
	deps.records.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "ghost").Return("", nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OwnersSkipped != 1 || result.Results[0].Outcome != OutcomeSkipped {
		t.Errorf("result = %+v, want one skipped owner", result)
	}
	if result.EmailsSent != 0 || result.ItemsRecorded != 0 {
		t.Errorf("skipped owner must not send or record: %+v", result)
	}
}

func TestRunEmailLookupErrorContinues(t *testing.T) {
	svc, deps := newTestService(t, false)

	deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{
		{ID: "a1", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(170), ExpectedDurationDays: 180},
		{ID: "b1", OwnerID: "owner-b", ItemType: "AA", DateLastServiced: daysAgo(170), ExpectedDurationDays: 180},
	}, nil)
	deps.records.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "owner-a").Return("", errors.New("users collection unavailable"))
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "owner-b").Return("b@example.com", nil)
	deps.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(domain.Receipt{ID: "email-b"}, nil)
	deps.records.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EmailsSent != 1 || result.EmailsFailed != 1 {
		t.Errorf("sent/failed = %d/%d, want 1/1", result.EmailsSent, result.EmailsFailed)
	}
}

func TestRunRecordFailureDoesNotFailOwner(t *testing.T) {
	svc, deps := newTestService(t, false)

	deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{
		{ID: "a1", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(170), ExpectedDurationDays: 180},
		{ID: "a2", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(100), ExpectedDurationDays: 180},
	}, nil)
	deps.records.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	deps.users.EXPECT().ResolveEmail(gomock.Any(), "owner-a").Return("a@example.com", nil)
	deps.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(domain.Receipt{ID: "email-a"}, nil)
	gomock.InOrder(
		deps.records.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("write conflict")),
		deps.records.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
	)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Outcome != OutcomeSent || result.ItemsRecorded != 1 {
		t.Errorf("result = %+v, want sent with one record", result)
	}
}

func TestRunStoreErrorsAreFatal(t *testing.T) {
	t.Run("list items", func(t *testing.T) {
		svc, deps := newTestService(t, false)
		storeErr := errors.New("mongo unavailable")
		deps.items.EXPECT().ListAll(gomock.Any()).Return(nil, storeErr)

		_, err := svc.Run(context.Background())
		if !errors.Is(err, storeErr) {
			t.Errorf("expected store error, got %v", err)
		}
	})

	t.Run("notification history", func(t *testing.T) {
		svc, deps := newTestService(t, false)
		storeErr := errors.New("mongo unavailable")
		deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{
			{ID: "a1", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(170), ExpectedDurationDays: 180},
		}, nil)
		deps.records.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, storeErr)

		_, err := svc.Run(context.Background())
		if !errors.Is(err, storeErr) {
			t.Errorf("expected store error, got %v", err)
		}
	})
}

func TestRunLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		svc, deps := newTestService(t, true)
		deps.lock.EXPECT().Acquire(gomock.Any(), DefaultLockTTL).Return(nil, domain.ErrSweepInProgress)

		_, err := svc.Run(context.Background())
		if !errors.Is(err, domain.ErrSweepInProgress) {
			t.Errorf("expected ErrSweepInProgress, got %v", err)
		}
	})

	t.Run("released after run", func(t *testing.T) {
		svc, deps := newTestService(t, true)
		released := false
		deps.lock.EXPECT().Acquire(gomock.Any(), DefaultLockTTL).Return(domain.ReleaseFunc(func(context.Context) error {
			released = true
			return nil
		}), nil)
		deps.items.EXPECT().ListAll(gomock.Any()).Return(nil, nil)

		if _, err := svc.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !released {
			t.Error("lock was not released")
		}
	})

	t.Run("lock backend down fails open", func(t *testing.T) {
		svc, deps := newTestService(t, true)
		deps.lock.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
		deps.items.EXPECT().ListAll(gomock.Any()).Return(nil, nil)

		result, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ItemsScanned != 0 {
			t.Errorf("ItemsScanned = %d, want 0", result.ItemsScanned)
		}
	})
}

func TestRunIgnoresCallerCancellation(t *testing.T) {
	svc, deps := newTestService(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	deps.items.EXPECT().
		ListAll(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]*domain.MaintenanceItem, error) {
			cancel()
			if ctx.Err() != nil {
				t.Error("sweep context was cancelled with the caller")
			}
			return nil, nil
		})

	if _, err := svc.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRecordsRunResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, deps := newTestService(t, false)
	recorder := domain.NewMockSweepResultRecorder(ctrl)
	svc.recorder = recorder

	deps.items.EXPECT().ListAll(gomock.Any()).Return([]*domain.MaintenanceItem{
		{ID: "a1", OwnerID: "owner-a", ItemType: "AA", DateLastServiced: daysAgo(5), ExpectedDurationDays: 180},
	}, nil)
	recorder.EXPECT().
		RecordSweep(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record domain.SweepRunRecord) error {
			if record.RunID != "run-1" || record.ItemsScanned != 1 {
				t.Errorf("record = %+v", record)
			}
			return errors.New("influx down")
		})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("recorder failure must not fail the sweep: %v", err)
	}
}
