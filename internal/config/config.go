package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Timezone    string
	CatalogFile string

	Redis        *RedisConfig
	Mongo        *MongoConfig
	Notification *NotificationConfig
	Mail         *MailConfig
	Auth         *AuthConfig
	Analytics    *AnalyticsConfig
	Sweep        *SweepConfig
}

// Load reads the process configuration from the environment. A .env file in
// the working directory is applied first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.String("error", err.Error()))
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	redisConfig, err := LoadRedisConfig()
	collect(err)
	notificationConfig, err := LoadNotificationConfig()
	collect(err)
	mailConfig, err := LoadMailConfig()
	collect(err)
	analyticsConfig, err := LoadAnalyticsConfig()
	collect(err)
	sweepConfig, err := LoadSweepConfig()
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		Port:         getEnvOrDefault("PORT", "8080"),
		Timezone:     os.Getenv("TIMEZONE"),
		CatalogFile:  os.Getenv("CATALOG_FILE"),
		Redis:        redisConfig,
		Mongo:        LoadMongoConfig(),
		Notification: notificationConfig,
		Mail:         mailConfig,
		Auth:         LoadAuthConfig(),
		Analytics:    analyticsConfig,
		Sweep:        sweepConfig,
	}, nil
}

// Location resolves TIMEZONE; empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvPositiveInt returns defaultValue when key is unset and errInvalid when
// it is set to anything but a positive integer.
func getEnvPositiveInt(key string, defaultValue int, errInvalid error) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errInvalid
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration, errInvalid error) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, errInvalid
	}
	return parsed, nil
}
