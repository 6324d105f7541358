package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ItemsCollection         = "batteryItems"
	UsersCollection         = "users"
	NotificationsCollection = "notifications"
	DetectionLogsCollection = "detectionlogs"

	connectTimeout = 10 * time.Second
)

// Connect opens a client and verifies it with a ping against the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ItemsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "itemId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "sentAt", Value: -1},
			}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		DetectionLogsCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
			{Keys: bson.D{{Key: "userSelection.deviceType", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		slog.DebugContext(ctx, "mongodb indexes ensured",
			slog.String("event", "mongo.indexes.ensure"),
			slog.String("collection", collection),
			slog.Any("indexes", names),
		)
	}

	return nil
}
