package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/tour-shop-backend/internal/notify"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
)

// FakeGateway hands out sequential order ids and reports whatever status
// was set for them, StatusPending by default.
type FakeGateway struct {
	mu       sync.Mutex
	next     int
	statuses map[string]payment.Status

	CreateErr error
	FetchErr  error
	Created   []payment.Order
	Fetches   int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{statuses: map[string]payment.Status{}}
}

func (g *FakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return payment.Order{}, g.CreateErr
	}
	g.next++
	o := payment.Order{
		ID:          fmt.Sprintf("order_%d", g.next),
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     receipt,
		CheckoutURL: fmt.Sprintf("https://pay.test/%d", g.next),
	}
	g.Created = append(g.Created, o)
	return o, nil
}

func (g *FakeGateway) FetchStatus(_ context.Context, id string) (payment.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Fetches++
	if g.FetchErr != nil {
		return "", g.FetchErr
	}
	if s, ok := g.statuses[id]; ok {
		return s, nil
	}
	return payment.StatusPending, nil
}

func (g *FakeGateway) SetStatus(id string, s payment.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[id] = s
}

// RecordingSender keeps every notification it is asked to send.
type RecordingSender struct {
	mu   sync.Mutex
	sent []notify.Notification
	Err  error
}

func (s *RecordingSender) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.Err
}

func (s *RecordingSender) Sent() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.sent...)
}
