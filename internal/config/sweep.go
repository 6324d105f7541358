package config

import (
	"os"
	"time"
)

const (
	defaultSweepClassifyWorkers = 8
	defaultSweepDispatchWorkers = 4
	defaultSweepSendTimeout     = 15 * time.Second
	defaultSweepLockTTL         = 10 * time.Minute
	defaultDashboardURL         = "https://voltahome.app/dashboard"
)

type SweepConfig struct {
	// TriggerToken, when set, must be presented as a bearer token to start a sweep.
	TriggerToken    string
	ClassifyWorkers int
	DispatchWorkers int
	SendTimeout     time.Duration
	LockTTL         time.Duration
	DashboardURL    string
}

func LoadSweepConfig() (*SweepConfig, error) {
	classifyWorkers, err := getEnvPositiveInt("SWEEP_CLASSIFY_WORKERS", defaultSweepClassifyWorkers, ErrInvalidSweepWorkers)
	if err != nil {
		return nil, err
	}
	dispatchWorkers, err := getEnvPositiveInt("SWEEP_DISPATCH_WORKERS", defaultSweepDispatchWorkers, ErrInvalidSweepWorkers)
	if err != nil {
		return nil, err
	}
	sendTimeout, err := getEnvDuration("SWEEP_SEND_TIMEOUT", defaultSweepSendTimeout, ErrInvalidSweepTimeout)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getEnvDuration("SWEEP_LOCK_TTL", defaultSweepLockTTL, ErrInvalidSweepTimeout)
	if err != nil {
		return nil, err
	}

	return &SweepConfig{
		TriggerToken:    os.Getenv("SWEEP_TRIGGER_TOKEN"),
		ClassifyWorkers: classifyWorkers,
		DispatchWorkers: dispatchWorkers,
		SendTimeout:     sendTimeout,
		LockTTL:         lockTTL,
		DashboardURL:    getEnvOrDefault("DASHBOARD_URL", defaultDashboardURL),
	}, nil
}
