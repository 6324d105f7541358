package pgstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

type notificationRow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index:idx_notification_key,priority:1"`
	ItemID    string    `gorm:"not null;index:idx_notification_key,priority:2"`
	Status    string    `gorm:"not null;index:idx_notification_key,priority:3"`
	SentAt    time.Time `gorm:"not null;index:idx_notification_key,priority:4"`
	EmailID   string
	RunID     string `gorm:"index"`
	CreatedAt time.Time
}

func (notificationRow) TableName() string {
	return "notification_records"
}

// NotificationRepository stores sent-notification records in PostgreSQL.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var _ domain.NotificationRecordRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) ExistsSince(ctx context.Context, key domain.NotificationKey, since time.Time) (bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&notificationRow{}).
		Where("user_id = ? AND item_id = ? AND status = ? AND sent_at >= ?",
			key.OwnerID, key.ItemID, key.Status.String(), since.UTC()).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, record *domain.NotificationRecord) error {
	row := notificationRow{
		UserID:  record.OwnerID,
		ItemID:  record.ItemID,
		Status:  record.Status.String(),
		SentAt:  record.SentAt.UTC(),
		EmailID: record.EmailID,
		RunID:   record.RunID,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
