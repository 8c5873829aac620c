package services

import (
	"context"

	"amana-grc/internal/adapters/directory"
)

// DirectoryClient authenticates a username/password pair against an external
// directory and returns the user's entry on success.
type DirectoryClient interface {
	Authenticate(ctx context.Context, username, password string) (*directory.Entry, error)
}

// Mailer sends notification emails
type Mailer interface {
	Send(to []string, subject, body string) error
}
