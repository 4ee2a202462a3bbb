package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/notify"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
)

// BookingStore is the part of the record store the booking flow needs.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	SetGatewayOrder(ctx context.Context, id, orderID string) error
	ConfirmPaid(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByTour(ctx context.Context, tourID string) ([]model.Booking, error)
}

type TourReader interface {
	GetByID(ctx context.Context, id string) (*model.Tour, error)
}

const (
	verifyLockTTL = 30 * time.Second
	notifyTimeout = 15 * time.Second
)

// BookingService runs the booking lifecycle: price, persist Pending, open a
// gateway order, and on verified payment confirm exactly once.
type BookingService struct {
	Bookings BookingStore
	Tours    TourReader
	Gateway  payment.Gateway
	Sender   notify.Sender
	Locker   Locker
	Log      *zap.Logger

	Currency string
	// SigningSecret verifies checkout signatures when the client sends one.
	SigningSecret string
	// NotifyTo overrides the booking email as the notification recipient.
	NotifyTo string

	notifying sync.WaitGroup
}

type CreateBookingInput struct {
	UserID         string
	Name           string
	Email          string
	Phone          string
	BookingType    string
	StartDate      time.Time
	EndDate        time.Time
	Guests         int
	PaymentOption  string
	SpecialRequest string
	TourID         string
}

type CreateBookingResult struct {
	Booking *model.Booking `json:"booking"`
	Order   payment.Order  `json:"order"`
}

// Create validates and prices the request, stores a Pending booking and
// attaches a gateway order for the amount due now.  When the gateway fails
// the booking stays Pending without an order.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	if s.Gateway == nil {
		return nil, fail(ErrGateway, "online payments are not available")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Name == "" || in.Email == "":
		return nil, fail(ErrValidation, "name and email are required")
	case in.Guests < 1:
		return nil, fail(ErrValidation, "guests must be at least 1")
	case in.Guests > MaxGuests:
		return nil, fail(ErrValidation, "guests must be at most %d", MaxGuests)
	}
	if in.PaymentOption == "" {
		in.PaymentOption = model.PaymentFull
	}
	if in.PaymentOption != model.PaymentFull && in.PaymentOption != model.PaymentDeposit {
		return nil, fail(ErrValidation, "paymentOption must be Full or Deposit")
	}

	var (
		price    int64
		priceErr error
	)
	if in.TourID != "" {
		tour, err := s.Tours.GetByID(ctx, in.TourID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrNotFound, "tour not found")
		}
		if err != nil {
			return nil, err
		}
		if in.Guests > tour.AvailableSeats {
			return nil, fail(ErrCapacityExceeded, "only %d seats available", tour.AvailableSeats)
		}
		if in.StartDate.IsZero() && in.EndDate.IsZero() {
			in.StartDate, in.EndDate = tour.StartDate, tour.EndDate
		}
		in.BookingType = model.BookingTypeTour
		price, priceErr = TourPrice(tour, in.Guests)
	} else {
		if strings.TrimSpace(in.BookingType) == "" {
			return nil, fail(ErrValidation, "bookingType is required")
		}
		if in.StartDate.IsZero() || in.EndDate.IsZero() {
			return nil, fail(ErrValidation, "startDate and endDate are required")
		}
		price, priceErr = GenericPrice(in.BookingType, in.Guests, in.StartDate, in.EndDate)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fail(ErrValidation, "endDate must not be before startDate")
	}
	if priceErr != nil {
		return nil, wrap(ErrValidation, priceErr, "amount is too large")
	}
	if err := chargeable(price); err != nil {
		return nil, err
	}
	amount := AmountDue(price, in.PaymentOption)
	amountMinor, err := payment.ToMinor(amount)
	if err != nil {
		return nil, wrap(ErrValidation, err, "amount is too large")
	}

	b := &model.Booking{
		UserID:         in.UserID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          strings.TrimSpace(in.Phone),
		BookingType:    in.BookingType,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Guests:         in.Guests,
		PaymentOption:  in.PaymentOption,
		Amount:         amount,
		TotalAmount:    price,
		TourID:         in.TourID,
		Status:         model.BookingPending,
		SpecialRequest: in.SpecialRequest,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	order, err := s.Gateway.CreateOrder(ctx, amountMinor, s.Currency, b.ID)
	if err != nil {
		s.Log.Error("booking gateway order failed", zap.String("booking_id", b.ID), zap.Error(err))
		return nil, wrap(ErrGateway, err, "could not create payment order")
	}
	if err := s.Bookings.SetGatewayOrder(ctx, b.ID, order.ID); err != nil {
		return nil, err
	}
	b.GatewayOrderID = order.ID
	return &CreateBookingResult{Booking: b, Order: order}, nil
}

type VerifyBookingInput struct {
	// UserID, when set, must own the booking.
	UserID    string
	BookingID string
	OrderID   string
	PaymentID string
	Signature string
}

// Verify confirms a booking once the gateway reports it paid.  It reports
// true when the booking is (now or already) confirmed and false while the
// payment is still outstanding.  Seats are taken and the notification is
// sent only by the call that actually flips the booking to paid.
func (s *BookingService) Verify(ctx context.Context, in VerifyBookingInput) (bool, error) {
	if in.BookingID == "" || in.OrderID == "" {
		return false, fail(ErrValidation, "bookingId and orderId are required")
	}

	unlock, err := s.lock(ctx, "booking:"+in.BookingID)
	if err != nil {
		return false, err
	}
	defer unlock()

	b, err := s.Bookings.GetByID(ctx, in.BookingID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && in.UserID != "" && b.UserID != in.UserID) {
		return false, fail(ErrNotFound, "booking not found")
	}
	if err != nil {
		return false, err
	}
	if b.GatewayOrderID == "" || b.GatewayOrderID != in.OrderID {
		return false, fail(ErrValidation, "order does not belong to this booking")
	}
	if b.Payment {
		return true, nil
	}
	if in.Signature != "" && s.SigningSecret != "" &&
		!payment.VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.SigningSecret) {
		return false, fail(ErrUnauthorized, "invalid payment signature")
	}

	if s.Gateway == nil {
		return false, fail(ErrGateway, "online payments are not available")
	}
	status, err := s.Gateway.FetchStatus(ctx, in.OrderID)
	if err != nil {
		return false, wrap(ErrGateway, err, "could not fetch payment status")
	}
	if status != payment.StatusPaid {
		return false, nil
	}

	first, err := s.Bookings.ConfirmPaid(ctx, b.ID)
	switch {
	case errors.Is(err, repository.ErrInsufficientSeats):
		s.Log.Error("paid booking exceeds available seats, refund required",
			zap.String("booking_id", b.ID),
			zap.String("tour_id", b.TourID),
			zap.Int("guests", b.Guests),
			zap.String("order_id", in.OrderID),
		)
		return false, fail(ErrCapacityExceeded, "not enough seats left on this tour")
	case errors.Is(err, repository.ErrNotFound):
		return false, fail(ErrNotFound, "booking not found")
	case err != nil:
		return false, err
	}
	if first {
		b.Payment = true
		b.Status = model.BookingConfirmed
		s.Log.Info("booking confirmed", zap.String("booking_id", b.ID), zap.Int64("amount", b.Amount))
		s.announce(ctx, notify.BookingConfirmed(b, s.NotifyTo))
	}
	return true, nil
}

// announce hands n to the sender in the background.  The send outlives the
// request but not notifyTimeout.
func (s *BookingService) announce(ctx context.Context, n notify.Notification) {
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		notify.Deliver(ctx, s.Sender, n, s.Log)
	}()
}

// Wait blocks until every notification started by Verify has finished.
func (s *BookingService) Wait() { s.notifying.Wait() }

// lock falls back to running unlocked when the lock backend itself fails.
func (s *BookingService) lock(ctx context.Context, key string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	unlock, err := s.Locker.Lock(ctx, key, verifyLockTTL)
	if errors.Is(err, ErrLocked) {
		return nil, fail(ErrConflict, "verification already in progress")
	}
	if err != nil {
		s.Log.Warn("lock unavailable", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	return unlock, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrNotFound, "booking not found")
	}
	return b, err
}

func (s *BookingService) List(ctx context.Context) ([]model.Booking, error) {
	return s.Bookings.List(ctx)
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if userID == "" {
		return nil, fail(ErrUnauthorized, "not authorized")
	}
	return s.Bookings.ListByUser(ctx, userID)
}

// Applicants lists every booking made for a tour.
func (s *BookingService) Applicants(ctx context.Context, tourID string) ([]model.Booking, error) {
	if tourID == "" {
		return nil, fail(ErrValidation, "tourId is required")
	}
	return s.Bookings.ListByTour(ctx, tourID)
}

// UpdateStatus stores any non-blank status exactly as given.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) error {
	if id == "" || strings.TrimSpace(status) == "" {
		return fail(ErrValidation, "bookingId and status are required")
	}
	err := s.Bookings.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "booking not found")
	}
	return err
}
