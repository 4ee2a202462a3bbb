// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/tour-shop-backend/internal/notify"

// BookingQueue is the durable queue carrying booking confirmations.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a booking payment is confirmed.
// It carries the rendered notification so the consumer can deliver it
// without querying the database.
type BookingConfirmedEvent struct {
    To          string `json:"to,omitempty"`
    Subject     string `json:"subject"`
    Body        string `json:"body"`
    ConfirmedAt string `json:"confirmed_at"`
}

func (e BookingConfirmedEvent) Notification() notify.Notification {
    return notify.Notification{To: e.To, Subject: e.Subject, Body: e.Body}
}
