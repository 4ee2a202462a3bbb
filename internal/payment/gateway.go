// Package payment adapts the two external payment providers to one contract:
// create a remote payable order for an amount in minor units, then fetch its
// status.  Amounts never pass through floating point.
package payment

import (
	"context"
	"errors"
	"math"
)

// Status is the provider-neutral payment state of a remote order.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

var (
	// ErrGateway wraps every provider failure, including unexpected response shapes.
	ErrGateway = errors.New("payment gateway error")
	// ErrAmountRange is returned when an amount is negative or does not fit in int64.
	ErrAmountRange = errors.New("amount out of range")
)

// Order is a provider-side payable transaction.  CheckoutURL is set by
// providers that redirect the buyer to a hosted page.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	CheckoutURL string `json:"url,omitempty"`
}

// Gateway is implemented by each provider adapter.  One instance is built at
// startup and injected where it is needed.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error)
	FetchStatus(ctx context.Context, externalID string) (Status, error)
}

// MulAmount multiplies two non-negative amounts.  It fails instead of
// wrapping around.
func MulAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrAmountRange
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, ErrAmountRange
	}
	return a * b, nil
}

// AddAmount adds two non-negative amounts.
func AddAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, ErrAmountRange
	}
	return a + b, nil
}

// ToMinor converts an amount in major units to the smallest currency unit.
func ToMinor(major int64) (int64, error) { return MulAmount(major, 100) }
