package testutil

import (
	"context"
	"testing"

	mongomodule "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupMongoContainer starts a MongoDB container and returns an empty database.
func SetupMongoContainer(ctx context.Context, t *testing.T) (*mongo.Database, func()) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("failed to start mongodb container: %v", r)
		}
	}()

	container, err := mongomodule.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("failed to start mongodb container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Skipf("failed to get mongodb connection string: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("failed to connect mongodb: %v", err)
	}

	db := client.Database("voltahome_test")

	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("failed to disconnect mongodb client: %v", err)
		}

		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongodb container: %v", err)
		}
	}

	return db, cleanup
}
