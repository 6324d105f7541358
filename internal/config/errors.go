package config

import "errors"

var (
	ErrRedisAddrMissing         = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB           = errors.New("REDIS_DB must be a non-negative integer")
	ErrMongoURIMissing          = errors.New("MONGODB_URI is required")
	ErrJWTSecretMissing         = errors.New("AUTH_JWT_SECRET is required")
	ErrInvalidTimezone          = errors.New("TIMEZONE must be a valid IANA time zone")
	ErrInvalidCooldown          = errors.New("NOTIFICATION_COOLDOWN must be a positive duration")
	ErrInvalidNotificationStore = errors.New("NOTIFICATION_STORE must be mongo or postgres")
	ErrPostgresDSNMissing       = errors.New("POSTGRES_DSN is required for NOTIFICATION_STORE=postgres")
	ErrInvalidMailProvider      = errors.New("MAIL_PROVIDER must be resend, smtp or log")
	ErrInvalidMailRetries       = errors.New("MAIL_MAX_RETRIES must be a positive integer")
	ErrInvalidAnalyticsQueue    = errors.New("ANALYTICS_QUEUE_SIZE must be a positive integer")
	ErrInvalidAnalyticsWorkers  = errors.New("ANALYTICS_WORKERS must be a positive integer")
	ErrInvalidSweepWorkers      = errors.New("SWEEP_CLASSIFY_WORKERS and SWEEP_DISPATCH_WORKERS must be positive integers")
	ErrInvalidSweepTimeout      = errors.New("SWEEP_SEND_TIMEOUT and SWEEP_LOCK_TTL must be positive durations")
)
