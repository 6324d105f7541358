package domain

import "context"

//go:generate mockgen -source=user_directory.go -destination=user_directory_mock.go -package=domain

type UserDirectory interface {
	// ResolveEmail returns an empty string when the user has no address on file.
	ResolveEmail(ctx context.Context, userID string) (string, error)
	FindByID(ctx context.Context, userID string) (*User, error)
	SetAdminByEmail(ctx context.Context, email string, isAdmin bool) (*User, error)
}
