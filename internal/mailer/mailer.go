package mailer

import "context"

// Message is one rendered email ready for submission.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	HTML     string
}

// Mailer submits a single message to a delivery provider. Implementations
// must be safe for concurrent use; the dispatcher fans out one Send per
// recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
