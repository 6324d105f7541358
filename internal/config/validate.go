package config

import (
	"errors"
	"fmt"
)

// ValidateForRun checks the settings the HTTP server cannot start without.
func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Mongo.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Notification.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Mail.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.Location(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}
