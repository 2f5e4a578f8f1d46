package mailer

import (
	"context"

	mail "gopkg.in/gomail.v2"
)

// SMTPMailer delivers through a plain SMTP relay. Used for self-hosted
// deployments where no transactional provider account exists.
type SMTPMailer struct {
	dialer *mail.Dialer
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{dialer: mail.NewDialer(host, port, username, password)}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := mail.NewMessage()
	if msg.FromName != "" {
		gm.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		gm.SetHeader("From", msg.From)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	// gomail has no context support; the dialer's own timeouts bound the call
	// and the dispatcher records a late completion as failed.
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(gm) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
