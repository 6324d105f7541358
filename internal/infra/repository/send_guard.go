package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const (
	sendGuardKeyPrefix = "notify:sent:"
)

type sendGuard struct {
	client *redis.Client
}

func NewSendGuard(client *redis.Client) domain.SendGuard {
	return &sendGuard{
		client: client,
	}
}

func (g *sendGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	return g.client.SetNX(ctx, sendGuardKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (g *sendGuard) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	return g.client.Del(ctx, sendGuardKeyPrefix+key).Err()
}
