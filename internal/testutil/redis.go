// Package testutil starts throwaway backing stores for integration tests.
// Every helper skips the calling test when Docker is unavailable.
package testutil

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/KasumiMercury/voltahome/internal/config"
)

// SetupRedisContainer starts Redis and returns a client configured the same
// way the server builds its own from REDIS_* settings.
func SetupRedisContainer(ctx context.Context, t *testing.T) (*redis.Client, func()) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("failed to start redis container: %v", r)
		}
	}()

	container, err := redismodule.Run(ctx, "redis:8-alpine")
	if err != nil {
		t.Skipf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Skipf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient((&config.RedisConfig{Addr: endpoint}).Options())

	terminate := func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	}

	if err := client.Ping(ctx).Err(); err != nil {
		terminate()
		t.Skipf("redis container not reachable: %v", err)
	}

	return client, terminate
}
