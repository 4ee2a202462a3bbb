package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/tour-shop-backend/internal/notify"
)

// Publisher sends booking notifications to the broker instead of delivering
// them inline.  It satisfies notify.Sender, so the booking flow does not
// know which path is in use.  A connection is opened per publish.
type Publisher struct {
	url string
	now func() time.Time
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, now: time.Now}
}

// Send publishes n as a persistent BookingConfirmedEvent.
func (p *Publisher) Send(ctx context.Context, n notify.Notification) error {
	ev := BookingConfirmedEvent{
		To:          n.To,
		Subject:     n.Subject,
		Body:        n.Body,
		ConfirmedAt: p.now().UTC().Format(time.RFC3339),
	}
	return p.Publish(ctx, ev)
}

// Publish declares the durable queue and publishes ev on the default exchange.
func (p *Publisher) Publish(ctx context.Context, ev BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
