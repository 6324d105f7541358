package config

import (
	"os"
	"strings"
	"time"
)

const (
	NotificationStoreMongo    = "mongo"
	NotificationStorePostgres = "postgres"

	defaultNotificationCooldown = 7 * 24 * time.Hour
)

type NotificationConfig struct {
	Cooldown    time.Duration
	Store       string
	PostgresDSN string
}

func LoadNotificationConfig() (*NotificationConfig, error) {
	cooldown, err := getEnvDuration("NOTIFICATION_COOLDOWN", defaultNotificationCooldown, ErrInvalidCooldown)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnvOrDefault("NOTIFICATION_STORE", NotificationStoreMongo))
	if store != NotificationStoreMongo && store != NotificationStorePostgres {
		return nil, ErrInvalidNotificationStore
	}

	return &NotificationConfig{
		Cooldown:    cooldown,
		Store:       store,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}, nil
}

func (c *NotificationConfig) Validate() error {
	if c.Store == NotificationStorePostgres && c.PostgresDSN == "" {
		return ErrPostgresDSNMissing
	}
	return nil
}
