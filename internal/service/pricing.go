package service

import (
	"math"
	"time"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
)

// MaxGuests is the largest party a single booking may carry.
const MaxGuests = 500

// DefaultRate applies to booking types missing from Rates.
const DefaultRate int64 = 1000

// Rates is the per-guest, per-day price of each generic booking type.
var Rates = map[string]int64{
	"Trek":        2000,
	"Camping":     1500,
	"Rafting":     2500,
	"Paragliding": 3500,
	"Wildlife":    1800,
}

func Rate(bookingType string) int64 {
	if r, ok := Rates[bookingType]; ok {
		return r
	}
	return DefaultRate
}

// Days counts whole days between start and end, rounding a partial day up
// and never returning less than one.
func Days(start, end time.Time) int64 {
	d := int64(math.Ceil(end.Sub(start).Hours() / 24))
	if d < 1 {
		return 1
	}
	return d
}

// GenericPrice prices a non-tour booking as rate × guests × days.
func GenericPrice(bookingType string, guests int, start, end time.Time) (int64, error) {
	perDay, err := payment.MulAmount(Rate(bookingType), int64(guests))
	if err != nil {
		return 0, err
	}
	return payment.MulAmount(perDay, Days(start, end))
}

// TourPrice is the tour's per-seat price times guests.
func TourPrice(t *model.Tour, guests int) (int64, error) {
	return payment.MulAmount(t.Price, int64(guests))
}

// OrderTotal is Σ price × quantity plus the delivery fee.
func OrderTotal(items model.OrderItems, deliveryFee int64) (int64, error) {
	total := deliveryFee
	for _, line := range items {
		sub, err := payment.MulAmount(line.Price, int64(line.Quantity))
		if err != nil {
			return 0, err
		}
		if total, err = payment.AddAmount(total, sub); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// chargeable checks that price converts to minor units, which also keeps
// AmountDue's arithmetic in range.
func chargeable(price int64) error {
	if _, err := payment.ToMinor(price); err != nil {
		return wrap(ErrValidation, err, "amount is too large")
	}
	return nil
}

// AmountDue is what the customer pays now: the full price, or 30% of it
// rounded half up for a deposit.
func AmountDue(price int64, option string) int64 {
	if option == model.PaymentDeposit {
		return (price*3 + 5) / 10
	}
	return price
}
