package model

import "time"

// Payment options for a booking.
const (
    PaymentFull    = "Full"
    PaymentDeposit = "Deposit"
)

// Booking statuses set by the payment lifecycle.  Administrators may store
// any other free-text status.
const (
    BookingPending   = "Pending"
    BookingConfirmed = "Confirmed"
)

// BookingTypeTour marks a booking linked to a cataloged Tour.
const BookingTypeTour = "tour"

// Booking is a reservation of either a generic experience (priced per day
// from the rate table) or a cataloged tour (priced per guest).
//
// Invariants: Amount <= TotalAmount; Amount == TotalAmount for Full;
// Amount == round(0.3 × TotalAmount) for Deposit; Payment flips to true once.
type Booking struct {
    ID             string    `json:"_id"`
    UserID         string    `json:"userId"`
    Name           string    `json:"name"`
    Email          string    `json:"email"`
    Phone          string    `json:"phone"`
    BookingType    string    `json:"bookingType"`
    StartDate      time.Time `json:"startDate"`
    EndDate        time.Time `json:"endDate"`
    Guests         int       `json:"guests"`
    PaymentOption  string    `json:"paymentOption"`
    Amount         int64     `json:"amount"`
    TotalAmount    int64     `json:"totalAmount"`
    TourID         string    `json:"tourId,omitempty"`
    GatewayOrderID string    `json:"razorpayOrderId,omitempty"`
    Status         string    `json:"status"`
    Payment        bool      `json:"payment"`
    SpecialRequest string    `json:"specialRequest"`
    CreatedAt      time.Time `json:"createdAt"`
}

// IsTour reports whether the booking references a cataloged tour.
func (b Booking) IsTour() bool { return b.TourID != "" }
