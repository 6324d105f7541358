package main

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KasumiMercury/voltahome/internal/config"
	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/health"
	"github.com/KasumiMercury/voltahome/internal/infra/mailer"
	"github.com/KasumiMercury/voltahome/internal/infra/mongostore"
	"github.com/KasumiMercury/voltahome/internal/infra/pgstore"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
)

func initCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Info("lifetime catalog loaded", slog.String("path", path))
	return cat, nil
}

func initMailer(cfg *config.MailConfig) (domain.Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderResend:
		client, err := mailer.NewResendClient(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.From, cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		slog.Info("mailer initialized", slog.String("provider", "resend"))
		return client, nil

	case config.MailProviderSMTP:
		sender, err := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From)
		if err != nil {
			return nil, err
		}
		slog.Info("mailer initialized",
			slog.String("provider", "smtp"),
			slog.String("host", cfg.SMTPHost),
		)
		return sender, nil

	default:
		slog.Warn("MAIL_PROVIDER not configured, notification emails are only logged")
		return mailer.NewLogMailer(), nil
	}
}

// initNotificationStore returns the notification record store selected by
// NOTIFICATION_STORE together with its cleanup and an optional readiness probe.
func initNotificationStore(
	ctx context.Context,
	cfg *config.NotificationConfig,
	db *mongo.Database,
) (domain.NotificationRecordRepository, func() error, health.Probe, error) {
	if cfg.Store != config.NotificationStorePostgres {
		return mongostore.NewNotificationRepository(db), nil, nil, nil
	}

	pg, err := pgstore.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("notification store: %w", err)
	}

	slog.Info("notification records stored in postgres")

	cleanup := func() error {
		return pgstore.Close(pg)
	}
	probe := func(ctx context.Context) error {
		return pgstore.Ping(ctx, pg)
	}
	return pgstore.NewNotificationRepository(pg), cleanup, probe, nil
}
