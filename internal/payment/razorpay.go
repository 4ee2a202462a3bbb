package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Razorpay is the order-based regional gateway used for bookings and for
// Razorpay checkouts.  The SDK has no context support; ctx is only checked
// before each call.
type Razorpay struct {
	client *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *Razorpay) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("%w: razorpay create order: %v", ErrGateway, err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return Order{}, fmt.Errorf("%w: razorpay create order: missing id", ErrGateway)
	}
	return Order{ID: id, AmountMinor: amountMinor, Currency: currency, Receipt: receipt}, nil
}

func (r *Razorpay) FetchStatus(ctx context.Context, externalID string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := r.client.Order.Fetch(externalID, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: razorpay fetch order: %v", ErrGateway, err)
	}
	status, ok := body["status"].(string)
	if !ok {
		return "", fmt.Errorf("%w: razorpay fetch order: missing status", ErrGateway)
	}
	return razorpayStatus(status), nil
}

// razorpayStatus maps order states: created and attempted are still payable.
func razorpayStatus(s string) Status {
	switch s {
	case "paid":
		return StatusPaid
	case "created", "attempted":
		return StatusPending
	default:
		return StatusFailed
	}
}
