package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers notifications through an SMTP relay.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, user, pass, from string) *EmailSender {
	if from == "" {
		from = user
	}
	return &EmailSender{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

// Send dials the relay per message.  gomail has no context support, so ctx
// only short-circuits a request that is already cancelled.
func (s *EmailSender) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.To == "" {
		return errors.New("email: no recipient")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", n.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}
