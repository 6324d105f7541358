package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

// Checker decides whether a session carries the admin capability: the stored
// user flag, or an email on the bootstrap allow-list.
type Checker struct {
	users     domain.UserDirectory
	allowList map[string]struct{}
}

func NewChecker(users domain.UserDirectory, allowList []string) *Checker {
	set := make(map[string]struct{}, len(allowList))
	for _, email := range allowList {
		email = normalizeEmail(email)
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return &Checker{
		users:     users,
		allowList: set,
	}
}

// ParseAllowList splits a comma separated list of emails.
func ParseAllowList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if email := normalizeEmail(part); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Checker) IsAdmin(ctx context.Context, session *domain.Session) (bool, error) {
	if session == nil || session.UserID == "" {
		return false, nil
	}

	user, err := c.users.FindByID(ctx, session.UserID)
	switch {
	case err == nil && user.IsAdmin:
		return true, nil
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	email := normalizeEmail(session.Email)
	if user != nil && user.Email != "" {
		email = normalizeEmail(user.Email)
	}
	if _, ok := c.allowList[email]; ok && email != "" {
		slog.WarnContext(ctx, "admin access granted through email allow-list",
			slog.String("event", "admin.allowlist_grant"),
			slog.String("user_id", session.UserID),
		)
		return true, nil
	}

	return false, nil
}
