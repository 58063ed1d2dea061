// Package notification defines the outbound mail port. Delivery itself is an
// external collaborator; the auth service only depends on the Mailer interface.
package notification

import (
	"context"
	"log"
)

// Mailer sends account lifecycle mail. Implementations must not block the
// request path for long; failures are the caller's to log or surface.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
}

// LogMailer writes mail to the process log instead of sending it. Used in
// development and tests.
type LogMailer struct{}

// SendVerificationEmail logs the verification link for the recipient.
func (LogMailer) SendVerificationEmail(_ context.Context, to, link string) error {
	log.Printf("mail: verification for %s: %s", to, link)
	return nil
}
