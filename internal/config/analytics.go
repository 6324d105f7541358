package config

import "time"

type AnalyticsConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

func LoadAnalyticsConfig() (*AnalyticsConfig, error) {
	queueSize, err := getEnvPositiveInt("ANALYTICS_QUEUE_SIZE", 1024, ErrInvalidAnalyticsQueue)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvPositiveInt("ANALYTICS_WORKERS", 2, ErrInvalidAnalyticsWorkers)
	if err != nil {
		return nil, err
	}

	return &AnalyticsConfig{
		QueueSize:    queueSize,
		Workers:      workers,
		WriteTimeout: 5 * time.Second,
	}, nil
}
