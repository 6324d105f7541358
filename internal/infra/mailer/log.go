package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

// LogMailer logs messages instead of delivering them. Used in development.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

var _ domain.Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(ctx context.Context, msg domain.Message) (domain.Receipt, error) {
	if msg.To == "" {
		return domain.Receipt{}, ErrMissingRecipient
	}

	id := "log-" + uuid.NewString()
	slog.InfoContext(ctx, "email not delivered, log mailer active",
		slog.String("event", "mailer.log"),
		slog.String("email_id", id),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_bytes", len(msg.HTML)),
	)
	return domain.Receipt{ID: id}, nil
}
