package domain

import "errors"

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidDuration = errors.New("expected duration must be between 1 and 3650 days")
	ErrSweepInProgress = errors.New("notification sweep already in progress")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin access required")
)
