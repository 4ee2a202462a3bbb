package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe is the card gateway.  An "order" is a hosted checkout session whose
// URL the buyer is redirected to; the session id is the external order id.
type Stripe struct {
	api         *client.API
	frontendURL string
}

// NewStripe builds a client bound to secretKey.  Checkout returns to
// frontendURL/verify with success and orderId query parameters.
func NewStripe(secretKey, frontendURL string) *Stripe {
	return &Stripe{api: client.New(secretKey, nil), frontendURL: strings.TrimRight(frontendURL, "/")}
}

func (s *Stripe) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.returnURL(true, receipt)),
		CancelURL:         stripe.String(s.returnURL(false, receipt)),
		ClientReferenceID: stripe.String(receipt),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currency)),
				UnitAmount: stripe.Int64(amountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order " + receipt),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return Order{}, fmt.Errorf("%w: stripe create session: %v", ErrGateway, err)
	}
	return Order{ID: sess.ID, AmountMinor: amountMinor, Currency: currency, Receipt: receipt, CheckoutURL: sess.URL}, nil
}

func (s *Stripe) FetchStatus(ctx context.Context, externalID string) (Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.Get(externalID, params)
	if err != nil {
		return "", fmt.Errorf("%w: stripe get session: %v", ErrGateway, err)
	}
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return StatusPaid, nil
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

func (s *Stripe) returnURL(success bool, orderID string) string {
	q := url.Values{}
	q.Set("success", fmt.Sprint(success))
	q.Set("orderId", orderID)
	return s.frontendURL + "/verify?" + q.Encode()
}
