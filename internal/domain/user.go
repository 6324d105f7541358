package domain

type User struct {
	ID      string
	Email   string
	Name    string
	IsAdmin bool
}

// Session is the authenticated caller extracted from a verified bearer token.
type Session struct {
	UserID string
	Email  string
	Name   string
}
