// Package notify builds confirmation messages for accepted registrations and
// hands them to a mail-sending collaborator without blocking admission.
package notify

import (
	"context"
	"log/slog"
)

//go:generate go run go.uber.org/mock/mockgen -source=mailer.go -destination=../mocks/mock_mailer.go -package=mocks

// Message is the request handed to the mail transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Locale  string
}

// Mailer delivers one message. Returning backoff.Permanent(err) stops retries.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It stands in
// for the real transport in local setups.
type LogMailer struct {
	Log *slog.Logger
}

// Send logs msg and never fails.
func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info("mail",
		slog.String("from", msg.From),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("locale", msg.Locale),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}
