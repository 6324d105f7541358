package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

type notificationDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	UserID  string             `bson:"userId"`
	ItemID  string             `bson:"itemId"`
	Status  string             `bson:"status"`
	SentAt  time.Time          `bson:"sentAt"`
	EmailID string             `bson:"emailId,omitempty"`
	RunID   string             `bson:"runId,omitempty"`
}

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection(NotificationsCollection)}
}

var _ domain.NotificationRecordRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) ExistsSince(ctx context.Context, key domain.NotificationKey, since time.Time) (bool, error) {
	filter := bson.M{
		"userId": key.OwnerID,
		"itemId": key.ItemID,
		"status": key.Status.String(),
		"sentAt": bson.M{"$gte": since},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, record *domain.NotificationRecord) error {
	doc := notificationDocument{
		ID:      primitive.NewObjectID(),
		UserID:  record.OwnerID,
		ItemID:  record.ItemID,
		Status:  record.Status.String(),
		SentAt:  record.SentAt,
		EmailID: record.EmailID,
		RunID:   record.RunID,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	return err
}
