package item

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

var testNow = time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func newTestService(t *testing.T) (*Service, *domain.MockItemRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := domain.NewMockItemRepository(ctrl)
	calc := status.NewCalculator(catalog.Default(), time.UTC, func() time.Time { return testNow })
	return NewService(repo, catalog.Default(), calc), repo
}

func TestCreateDefaults(t *testing.T) {
	tests := []struct {
		name             string
		input            CreateInput
		expectedCategory string
		expectedDuration int
	}{
		{
			name:             "battery type takes catalog lifetime",
			input:            CreateInput{Name: " TV remote ", ItemType: "AAA", DateLastServiced: date(2025, 5, 1), Image: "img"},
			expectedCategory: domain.CategoryBattery,
			expectedDuration: 120,
		},
		{
			name:             "hvac type takes its category",
			input:            CreateInput{Name: "Furnace", ItemType: "hvac-filter-1in", DateLastServiced: date(2025, 5, 1), Image: "img"},
			expectedCategory: domain.CategoryHVAC,
			expectedDuration: 90,
		},
		{
			name:             "unknown type falls back to other and global default",
			input:            CreateInput{Name: "Gadget", ItemType: "mystery", DateLastServiced: date(2025, 5, 1), Image: "img"},
			expectedCategory: domain.CategoryOther,
			expectedDuration: 180,
		},
		{
			name:             "explicit duration wins",
			input:            CreateInput{Name: "Clock", ItemType: "AA", DateLastServiced: date(2025, 5, 1), Image: "img", ExpectedDurationDays: intPtr(45)},
			expectedCategory: domain.CategoryBattery,
			expectedDuration: 45,
		},
		{
			name:             "unknown safety type takes category fallback",
			input:            CreateInput{Name: "Alarm", Category: domain.CategorySafety, ItemType: "heat-detector", DateLastServiced: date(2025, 5, 1), Image: "img"},
			expectedCategory: domain.CategorySafety,
			expectedDuration: 365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			repo.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, item *domain.MaintenanceItem) (*domain.MaintenanceItem, error) {
					stored := *item
					stored.ID = "new-id"
					return &stored, nil
				})

			got, err := svc.Create(context.Background(), "owner-1", tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.OwnerID != "owner-1" {
				t.Errorf("OwnerID = %q", got.OwnerID)
			}
			if got.Category != tt.expectedCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.expectedCategory)
			}
			if got.ExpectedDurationDays != tt.expectedDuration {
				t.Errorf("ExpectedDurationDays = %d, want %d", got.ExpectedDurationDays, tt.expectedDuration)
			}
			if got.Name != "TV remote" && tt.input.Name == " TV remote " {
				t.Errorf("Name not trimmed: %q", got.Name)
			}
			if got.ElapsedDays != 31 {
				t.Errorf("ElapsedDays = %d, want 31", got.ElapsedDays)
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	valid := CreateInput{Name: "Remote", ItemType: "AA", DateLastServiced: date(2025, 5, 1), Image: "img"}

	tests := []struct {
		name        string
		mutate      func(in *CreateInput)
		expectedErr error
	}{
		{name: "missing name", mutate: func(in *CreateInput) { in.Name = "   " }, expectedErr: domain.ErrInvalidInput},
		{name: "missing item type", mutate: func(in *CreateInput) { in.ItemType = "" }, expectedErr: domain.ErrInvalidInput},
		{name: "missing date", mutate: func(in *CreateInput) { in.DateLastServiced = time.Time{} }, expectedErr: domain.ErrInvalidInput},
		{name: "missing image", mutate: func(in *CreateInput) { in.Image = "" }, expectedErr: domain.ErrInvalidInput},
		{name: "zero duration", mutate: func(in *CreateInput) { in.ExpectedDurationDays = intPtr(0) }, expectedErr: domain.ErrInvalidDuration},
		{name: "negative duration", mutate: func(in *CreateInput) { in.ExpectedDurationDays = intPtr(-5) }, expectedErr: domain.ErrInvalidDuration},
		{name: "duration too long", mutate: func(in *CreateInput) { in.ExpectedDurationDays = intPtr(3651) }, expectedErr: domain.ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			in := valid
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), "owner-1", in)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestListAnnotatesStatus(t *testing.T) {
	svc, repo := newTestService(t)

	repo.EXPECT().ListByOwner(gomock.Any(), "owner-1").Return([]*domain.MaintenanceItem{
		{ID: "1", OwnerID: "owner-1", ItemType: "AA", DateLastServiced: date(2024, 11, 13), ExpectedDurationDays: 180},
		{ID: "2", OwnerID: "owner-1", ItemType: "AA", DateLastServiced: date(2025, 3, 3), ExpectedDurationDays: 180},
		{ID: "3", OwnerID: "owner-1", ItemType: "AA", DateLastServiced: date(2025, 5, 22), ExpectedDurationDays: 180},
		{ID: "4", OwnerID: "owner-1", ItemType: "AAA", DateLastServiced: date(2025, 5, 22)},
	}, nil)

	got, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []struct {
		elapsed int
		percent int
		display int
		status  domain.Status
	}{
		{elapsed: 200, percent: 111, display: 100, status: domain.StatusReplace},
		{elapsed: 90, percent: 50, display: 50, status: domain.StatusWarning},
		{elapsed: 10, percent: 6, display: 6, status: domain.StatusGood},
		{elapsed: 10, percent: 8, display: 8, status: domain.StatusGood},
	}

	if len(got) != len(expected) {
		t.Fatalf("got %d items, want %d", len(got), len(expected))
	}
	for i, want := range expected {
		if got[i].ElapsedDays != want.elapsed || got[i].PercentUsed != want.percent ||
			got[i].DisplayPercent() != want.display || got[i].Status != want.status {
			t.Errorf("item %d = {%d %d %d %s}, want %+v", i,
				got[i].ElapsedDays, got[i].PercentUsed, got[i].DisplayPercent(), got[i].Status, want)
		}
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name        string
		fields      domain.ItemFields
		expectCall  bool
		expectedErr error
	}{
		{name: "empty update", fields: domain.ItemFields{}, expectedErr: domain.ErrInvalidInput},
		{name: "blank name", fields: domain.ItemFields{Name: strPtr("  ")}, expectedErr: domain.ErrInvalidInput},
		{name: "zero duration", fields: domain.ItemFields{ExpectedDurationDays: intPtr(0)}, expectedErr: domain.ErrInvalidDuration},
		{name: "blank image", fields: domain.ItemFields{Image: strPtr("")}, expectedErr: domain.ErrInvalidInput},
		{name: "valid duration", fields: domain.ItemFields{ExpectedDurationDays: intPtr(90)}, expectCall: true},
		{name: "trimmed name", fields: domain.ItemFields{Name: strPtr(" Hall alarm ")}, expectCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			if tt.expectCall {
				repo.EXPECT().
					UpdateFields(gomock.Any(), "owner-1", "item-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _, _ string, fields domain.ItemFields) (*domain.MaintenanceItem, error) {
						if fields.Name != nil && *fields.Name != "Hall alarm" {
							t.Errorf("name not trimmed: %q", *fields.Name)
						}
						return &domain.MaintenanceItem{ID: "item-1", OwnerID: "owner-1", DateLastServiced: date(2025, 5, 1), ExpectedDurationDays: 90}, nil
					})
			}

			_, err := svc.Update(context.Background(), "owner-1", "item-1", tt.fields)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, repo := newTestService(t)

	repo.EXPECT().
		UpdateFields(gomock.Any(), "owner-2", "item-1", gomock.Any()).
		Return(nil, domain.ErrItemNotFound)

	_, err := svc.Update(context.Background(), "owner-2", "item-1", domain.ItemFields{Name: strPtr("x")})
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestMarkServicedSetsToday(t *testing.T) {
	svc, repo := newTestService(t)

	repo.EXPECT().
		UpdateFields(gomock.Any(), "owner-1", "item-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields domain.ItemFields) (*domain.MaintenanceItem, error) {
			if fields.DateLastServiced == nil || !fields.DateLastServiced.Equal(date(2025, 6, 1)) {
				t.Errorf("DateLastServiced = %v, want 2025-06-01", fields.DateLastServiced)
			}
			if fields.Name != nil || fields.ExpectedDurationDays != nil {
				t.Error("MarkServiced must only touch the service date")
			}
			return &domain.MaintenanceItem{ID: "item-1", DateLastServiced: *fields.DateLastServiced, ExpectedDurationDays: 180}, nil
		})

	got, err := svc.MarkServiced(context.Background(), "owner-1", "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ElapsedDays != 0 || got.Status != domain.StatusGood {
		t.Errorf("after service: elapsed=%d status=%s", got.ElapsedDays, got.Status)
	}
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService(t)

	repo.EXPECT().Delete(gomock.Any(), "owner-1", "item-1").Return(nil)
	repo.EXPECT().Delete(gomock.Any(), "owner-1", "missing").Return(domain.ErrItemNotFound)

	if err := svc.Delete(context.Background(), "owner-1", "item-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-1", "missing"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}
