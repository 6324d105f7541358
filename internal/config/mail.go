package config

import (
	"errors"
	"os"
	"strings"
)

const (
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"
	MailProviderLog    = "log"

	defaultMailFrom = "VoltaHome <alerts@voltahome.app>"
)

type MailConfig struct {
	Provider   string
	From       string
	MaxRetries int

	ResendAPIKey  string
	ResendBaseURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

func LoadMailConfig() (*MailConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("MAIL_PROVIDER", MailProviderLog))
	switch provider {
	case MailProviderResend, MailProviderSMTP, MailProviderLog:
	default:
		return nil, ErrInvalidMailProvider
	}

	maxRetries, err := getEnvPositiveInt("MAIL_MAX_RETRIES", 3, ErrInvalidMailRetries)
	if err != nil {
		return nil, err
	}

	return &MailConfig{
		Provider:   provider,
		From:       getEnvOrDefault("MAIL_FROM", defaultMailFrom),
		MaxRetries: maxRetries,

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendBaseURL: os.Getenv("RESEND_BASE_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}, nil
}

func (c *MailConfig) Validate() error {
	var errs []error
	switch c.Provider {
	case MailProviderResend:
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for MAIL_PROVIDER=resend"))
		}
	case MailProviderSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for MAIL_PROVIDER=smtp"))
		}
	}
	return errors.Join(errs...)
}
