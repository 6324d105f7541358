package item

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

// Annotated is a stored item together with its freshly computed status.
type Annotated struct {
	*domain.MaintenanceItem
	status.Result
}

// CreateInput is a new item as submitted by its owner. A nil
// ExpectedDurationDays takes the catalog default.
type CreateInput struct {
	Name                 string
	Category             string
	ItemType             string
	DateLastServiced     time.Time
	ExpectedDurationDays *int
	Image                string
}

type Service struct {
	repo       domain.ItemRepository
	catalog    *catalog.Catalog
	calculator *status.Calculator
}

func NewService(repo domain.ItemRepository, cat *catalog.Catalog, calculator *status.Calculator) *Service {
	return &Service{
		repo:       repo,
		catalog:    cat,
		calculator: calculator,
	}
}

func (s *Service) annotate(item *domain.MaintenanceItem) Annotated {
	return Annotated{
		MaintenanceItem: item,
		Result:          s.calculator.ClassifyItem(item),
	}
}

// List returns the owner's items, newest first, with status annotations.
func (s *Service) List(ctx context.Context, ownerID string) ([]Annotated, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	out := make([]Annotated, 0, len(items))
	for _, item := range items {
		out = append(out, s.annotate(item))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Annotated, error) {
	item, err := s.newItem(ownerID, in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	slog.InfoContext(ctx, "item created",
		slog.String("owner_id", ownerID),
		slog.String("item_id", created.ID),
		slog.String("item_type", created.ItemType),
		slog.Int("expected_duration_days", created.ExpectedDurationDays),
	)

	annotated := s.annotate(created)
	return &annotated, nil
}

func (s *Service) newItem(ownerID string, in CreateInput) (*domain.MaintenanceItem, error) {
	name := strings.TrimSpace(in.Name)
	itemType := strings.TrimSpace(in.ItemType)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case itemType == "":
		return nil, fmt.Errorf("%w: itemType is required", domain.ErrInvalidInput)
	case in.DateLastServiced.IsZero():
		return nil, fmt.Errorf("%w: dateLastServiced is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Image) == "":
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = s.categoryOf(itemType)
	}

	duration := s.catalog.DefaultDuration(category, itemType)
	if in.ExpectedDurationDays != nil {
		duration = *in.ExpectedDurationDays
		if err := domain.ValidateDuration(duration); err != nil {
			return nil, err
		}
	}

	return &domain.MaintenanceItem{
		OwnerID:              ownerID,
		Name:                 name,
		Category:             category,
		ItemType:             itemType,
		DateLastServiced:     s.calculator.DateOf(in.DateLastServiced),
		ExpectedDurationDays: duration,
		Image:                in.Image,
	}, nil
}

func (s *Service) categoryOf(itemType string) string {
	if category, ok := s.catalog.CategoryOf(itemType); ok {
		return category
	}
	return domain.CategoryOther
}

// Update applies a partial update. The expected duration is never re-derived
// from the catalog here, even when the item type changes.
func (s *Service) Update(ctx context.Context, ownerID, itemID string, fields domain.ItemFields) (*Annotated, error) {
	fields, err := s.normalize(fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFields(ctx, ownerID, itemID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	annotated := s.annotate(updated)
	return &annotated, nil
}

func (s *Service) normalize(fields domain.ItemFields) (domain.ItemFields, error) {
	if fields.IsEmpty() {
		return fields, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	trimmed := func(field string, v *string) (*string, error) {
		if v == nil {
			return nil, nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			return nil, fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, field)
		}
		return &t, nil
	}

	var err error
	if fields.Name, err = trimmed("name", fields.Name); err != nil {
		return fields, err
	}
	if fields.Category, err = trimmed("category", fields.Category); err != nil {
		return fields, err
	}
	if fields.ItemType, err = trimmed("itemType", fields.ItemType); err != nil {
		return fields, err
	}
	if fields.Image != nil && strings.TrimSpace(*fields.Image) == "" {
		return fields, fmt.Errorf("%w: image must not be empty", domain.ErrInvalidInput)
	}
	if fields.ExpectedDurationDays != nil {
		if err := domain.ValidateDuration(*fields.ExpectedDurationDays); err != nil {
			return fields, err
		}
	}
	if fields.DateLastServiced != nil {
		if fields.DateLastServiced.IsZero() {
			return fields, fmt.Errorf("%w: dateLastServiced must not be empty", domain.ErrInvalidInput)
		}
		date := s.calculator.DateOf(*fields.DateLastServiced)
		fields.DateLastServiced = &date
	}

	return fields, nil
}

// MarkServiced resets the item's service date to today.
func (s *Service) MarkServiced(ctx context.Context, ownerID, itemID string) (*Annotated, error) {
	today := s.calculator.Today()

	updated, err := s.repo.UpdateFields(ctx, ownerID, itemID, domain.ItemFields{DateLastServiced: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to mark item serviced: %w", err)
	}

	slog.InfoContext(ctx, "item marked serviced",
		slog.String("owner_id", ownerID),
		slog.String("item_id", itemID),
		slog.String("date", today.Format(time.DateOnly)),
	)

	annotated := s.annotate(updated)
	return &annotated, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, itemID string) error {
	if err := s.repo.Delete(ctx, ownerID, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	slog.InfoContext(ctx, "item deleted",
		slog.String("owner_id", ownerID),
		slog.String("item_id", itemID),
	)
	return nil
}
