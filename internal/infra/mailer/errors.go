package mailer

import "errors"

var (
	ErrMissingAPIKey    = errors.New("mailer: api key is required")
	ErrMissingSender    = errors.New("mailer: sender address is required")
	ErrMissingRecipient = errors.New("mailer: recipient address is required")
	ErrRejected         = errors.New("mailer: message rejected by provider")
)
