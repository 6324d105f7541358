package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=notification_repository.go -destination=notification_repository_mock.go -package=domain

type NotificationRecordRepository interface {
	ExistsSince(ctx context.Context, key NotificationKey, since time.Time) (bool, error)
	Insert(ctx context.Context, record *NotificationRecord) error
}
