package mailer

import "context"

// Mailer sends a plain text mail to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
