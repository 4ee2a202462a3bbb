// Package notify delivers plain-text notifications about booking events.
// Delivery is best-effort: callers use Deliver, which logs a failed send
// and never returns it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// Notification is one outbound message.  To may be empty for channels that
// have a fixed destination (an admin chat, a configured inbox).
type Notification struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Deliver sends n and swallows the failure after logging it.  A nil sender
// is allowed and does nothing.
func Deliver(ctx context.Context, s Sender, n Notification, log *zap.Logger) {
	if s == nil {
		return
	}
	if err := s.Send(ctx, n); err != nil && log != nil {
		log.Warn("notification not delivered",
			zap.String("subject", n.Subject),
			zap.String("to", n.To),
			zap.Error(err),
		)
	}
}

// Multi fans a notification out to every sender and joins their errors.
type Multi []Sender

func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Send(context.Context, Notification) error { return nil }

// BookingConfirmed formats the message sent when a booking payment is
// confirmed.  notifyTo overrides the booking's own email when set.
func BookingConfirmed(b *model.Booking, notifyTo string) Notification {
	to := notifyTo
	if to == "" {
		to = b.Email
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Booking %s is confirmed.\n\n", b.ID)
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Email: %s\n", b.Email)
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	fmt.Fprintf(&sb, "Type: %s\n", b.BookingType)
	fmt.Fprintf(&sb, "Dates: %s to %s\n", b.StartDate.Format(time.DateOnly), b.EndDate.Format(time.DateOnly))
	fmt.Fprintf(&sb, "Guests: %d\n", b.Guests)
	fmt.Fprintf(&sb, "Payment: %s, paid %d of %d\n", b.PaymentOption, b.Amount, b.TotalAmount)
	if b.SpecialRequest != "" {
		fmt.Fprintf(&sb, "Special request: %s\n", b.SpecialRequest)
	}
	return Notification{
		To:      to,
		Subject: "Booking confirmed: " + b.Name,
		Body:    sb.String(),
	}
}
