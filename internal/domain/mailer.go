package domain

import "context"

//go:generate mockgen -source=mailer.go -destination=mailer_mock.go -package=domain

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Receipt carries the provider's message id; ID may be empty.
type Receipt struct {
	ID string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
