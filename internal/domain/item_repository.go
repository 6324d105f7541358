package domain

import "context"

//go:generate mockgen -source=item_repository.go -destination=item_repository_mock.go -package=domain

// ItemRepository is scoped by owner for every per-item operation; a miss
// (including another owner's item) is ErrItemNotFound.
type ItemRepository interface {
	ListAll(ctx context.Context) ([]*MaintenanceItem, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*MaintenanceItem, error)
	FindByID(ctx context.Context, ownerID, itemID string) (*MaintenanceItem, error)
	Insert(ctx context.Context, item *MaintenanceItem) (*MaintenanceItem, error)
	UpdateFields(ctx context.Context, ownerID, itemID string, fields ItemFields) (*MaintenanceItem, error)
	Delete(ctx context.Context, ownerID, itemID string) error
}
