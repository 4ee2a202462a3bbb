package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/notify"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
	"github.com/iliyamo/tour-shop-backend/internal/testutil"
)

type bookingFixture struct {
	mem    *testutil.Mem
	gw     *testutil.FakeGateway
	sender *testutil.RecordingSender
	svc    *BookingService
}

func newBookingFixture() *bookingFixture {
	mem := testutil.NewMem()
	gw := testutil.NewFakeGateway()
	sender := &testutil.RecordingSender{}
	return &bookingFixture{
		mem:    mem,
		gw:     gw,
		sender: sender,
		svc: &BookingService{
			Bookings: mem.Bookings(),
			Tours:    mem.Tours(),
			Gateway:  gw,
			Sender:   sender,
			Locker:   NopLocker{},
			Log:      zap.NewNop(),
			Currency: "INR",
		},
	}
}

func (f *bookingFixture) tour(t *testing.T, seats int, price int64) *model.Tour {
	t.Helper()
	tour := &model.Tour{
		Name:           "Valley Trek",
		StartDate:      day(10),
		EndDate:        day(14),
		Price:          price,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Status:         model.TourPublished,
	}
	if err := f.mem.Tours().Create(context.Background(), tour); err != nil {
		t.Fatalf("create tour: %v", err)
	}
	return tour
}

func trekInput(option string) CreateBookingInput {
	return CreateBookingInput{
		UserID:        "u1",
		Name:          "Asha",
		Email:         "asha@example.com",
		Phone:         "999",
		BookingType:   "Trek",
		StartDate:     day(1),
		EndDate:       day(3),
		Guests:        3,
		PaymentOption: option,
	}
}

func TestCreateGenericBookingPricing(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	full, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create full: %v", err)
	}
	if full.Booking.TotalAmount != 12000 || full.Booking.Amount != 12000 {
		t.Fatalf("full: expected 12000/12000, got %d/%d", full.Booking.Amount, full.Booking.TotalAmount)
	}
	if full.Order.AmountMinor != 1200000 {
		t.Fatalf("gateway must receive minor units, got %d", full.Order.AmountMinor)
	}

	dep, err := f.svc.Create(ctx, trekInput(model.PaymentDeposit))
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if dep.Booking.TotalAmount != 12000 || dep.Booking.Amount != 3600 {
		t.Fatalf("deposit: expected 3600/12000, got %d/%d", dep.Booking.Amount, dep.Booking.TotalAmount)
	}

	stored, err := f.mem.Bookings().GetByID(ctx, dep.Booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != model.BookingPending || stored.Payment {
		t.Fatalf("new booking must be Pending and unpaid, got %s/%v", stored.Status, stored.Payment)
	}
	if stored.GatewayOrderID != dep.Order.ID {
		t.Fatalf("gateway order not attached: %q", stored.GatewayOrderID)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newBookingFixture()
	in := trekInput(model.PaymentFull)
	in.StartDate = time.Time{}
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing dates: expected ErrValidation, got %v", err)
	}
	in = trekInput("Half")
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad option: expected ErrValidation, got %v", err)
	}
	if f.mem.Bookings().Count() != 0 {
		t.Fatalf("invalid requests must not write")
	}
}

func TestCreateTourBookingCapacityExceededWritesNothing(t *testing.T) {
	f := newBookingFixture()
	tour := f.tour(t, 2, 5000)

	in := trekInput(model.PaymentFull)
	in.TourID = tour.ID
	_, err := f.svc.Create(context.Background(), in)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if f.mem.Bookings().Count() != 0 {
		t.Fatalf("expected no booking to be written")
	}
	if len(f.gw.Created) != 0 {
		t.Fatalf("expected no gateway order")
	}
}

func TestCreateTourBookingUnknownTour(t *testing.T) {
	f := newBookingFixture()
	in := trekInput(model.PaymentFull)
	in.TourID = "missing"
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBookingGatewayFailureLeavesPending(t *testing.T) {
	f := newBookingFixture()
	f.gw.CreateErr = errors.New("provider down")
	_, err := f.svc.Create(context.Background(), trekInput(model.PaymentFull))
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	if f.mem.Bookings().Count() != 1 {
		t.Fatalf("booking should remain stored as Pending")
	}
}

func TestVerifyTourBookingDecrementsOnce(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	tour := f.tour(t, 10, 5000)

	in := trekInput(model.PaymentDeposit)
	in.TourID = tour.ID
	res, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Booking.TotalAmount != 15000 || res.Booking.Amount != 4500 {
		t.Fatalf("tour pricing: got %d/%d", res.Booking.Amount, res.Booking.TotalAmount)
	}

	verify := VerifyBookingInput{BookingID: res.Booking.ID, OrderID: res.Order.ID}
	ok, err := f.svc.Verify(ctx, verify)
	if err != nil || ok {
		t.Fatalf("unpaid order must not confirm: ok=%v err=%v", ok, err)
	}

	f.gw.SetStatus(res.Order.ID, payment.StatusPaid)
	for i := 0; i < 2; i++ {
		ok, err := f.svc.Verify(ctx, verify)
		if err != nil || !ok {
			t.Fatalf("verify #%d: ok=%v err=%v", i+1, ok, err)
		}
	}

	got, _ := f.mem.Tours().GetByID(ctx, tour.ID)
	if got.AvailableSeats != 7 {
		t.Fatalf("expected 7 seats left, got %d", got.AvailableSeats)
	}
	b, _ := f.mem.Bookings().GetByID(ctx, res.Booking.ID)
	if !b.Payment || b.Status != model.BookingConfirmed {
		t.Fatalf("booking not confirmed: %+v", b)
	}
	f.svc.Wait()
	if n := len(f.sender.Sent()); n != 1 {
		t.Fatalf("expected exactly one notification, got %d", n)
	}
}

func TestVerifyRejectsForeignOrderID(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.gw.SetStatus("order_999", payment.StatusPaid)
	_, err = f.svc.Verify(ctx, VerifyBookingInput{BookingID: res.Booking.ID, OrderID: "order_999"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	f := newBookingFixture()
	f.svc.SigningSecret = "rzp_secret"
	ctx := context.Background()
	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.gw.SetStatus(res.Order.ID, payment.StatusPaid)

	bad := VerifyBookingInput{BookingID: res.Booking.ID, OrderID: res.Order.ID, PaymentID: "pay_1", Signature: "deadbeef"}
	if _, err := f.svc.Verify(ctx, bad); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	good := bad
	good.Signature = payment.Sign(res.Order.ID, "pay_1", "rzp_secret")
	if ok, err := f.svc.Verify(ctx, good); err != nil || !ok {
		t.Fatalf("valid signature: ok=%v err=%v", ok, err)
	}
}

func TestSeatsNeverNegative(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	tour := f.tour(t, 4, 100)

	var orders []CreateBookingResult
	for i := 0; i < 2; i++ {
		in := trekInput(model.PaymentFull)
		in.TourID = tour.ID
		res, err := f.svc.Create(ctx, in)
		if err != nil {
			t.Fatalf("create #%d: %v", i+1, err)
		}
		f.gw.SetStatus(res.Order.ID, payment.StatusPaid)
		orders = append(orders, *res)
	}

	if ok, err := f.svc.Verify(ctx, VerifyBookingInput{BookingID: orders[0].Booking.ID, OrderID: orders[0].Order.ID}); err != nil || !ok {
		t.Fatalf("first confirmation: ok=%v err=%v", ok, err)
	}
	_, err := f.svc.Verify(ctx, VerifyBookingInput{BookingID: orders[1].Booking.ID, OrderID: orders[1].Order.ID})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	got, _ := f.mem.Tours().GetByID(ctx, tour.ID)
	if got.AvailableSeats != 1 {
		t.Fatalf("expected 1 seat left, got %d", got.AvailableSeats)
	}
	b, _ := f.mem.Bookings().GetByID(ctx, orders[1].Booking.ID)
	if b.Payment || b.Status != model.BookingPending {
		t.Fatalf("rejected confirmation must leave booking pending: %+v", b)
	}
}

func TestNotificationFailureDoesNotFailVerify(t *testing.T) {
	f := newBookingFixture()
	f.sender.Err = errors.New("smtp down")
	ctx := context.Background()
	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.gw.SetStatus(res.Order.ID, payment.StatusPaid)
	if ok, err := f.svc.Verify(ctx, VerifyBookingInput{BookingID: res.Booking.ID, OrderID: res.Order.ID}); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	f.svc.Wait()
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string, time.Duration) (func(), error) { return nil, ErrLocked }

func TestVerifyConcurrentAttemptConflicts(t *testing.T) {
	f := newBookingFixture()
	f.svc.Locker = busyLocker{}
	_, err := f.svc.Verify(context.Background(), VerifyBookingInput{BookingID: "b", OrderID: "o"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateStatusStoresVerbatim(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.UpdateStatus(ctx, res.Booking.ID, "Cancelled"); err != nil {
		t.Fatalf("update: %v", err)
	}
	b, _ := f.mem.Bookings().GetByID(ctx, res.Booking.ID)
	if b.Status != "Cancelled" {
		t.Fatalf("expected Cancelled, got %q", b.Status)
	}
	if err := f.svc.UpdateStatus(ctx, res.Booking.ID, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank status: expected ErrValidation, got %v", err)
	}
	if err := f.svc.UpdateStatus(ctx, "nope", "Done"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown booking: expected ErrNotFound, got %v", err)
	}
}

func TestApplicantsAndUserListing(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	tour := f.tour(t, 10, 100)

	in := trekInput(model.PaymentFull)
	in.TourID = tour.ID
	if _, err := f.svc.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := trekInput(model.PaymentFull)
	other.UserID = "u2"
	if _, err := f.svc.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	apps, err := f.svc.Applicants(ctx, tour.ID)
	if err != nil || len(apps) != 1 {
		t.Fatalf("applicants: %v %d", err, len(apps))
	}
	mine, err := f.svc.ListForUser(ctx, "u2")
	if err != nil || len(mine) != 1 || mine[0].UserID != "u2" {
		t.Fatalf("user bookings: %v %+v", err, mine)
	}
	if _, err := f.svc.Applicants(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateWithoutGatewayStoresNothing(t *testing.T) {
	f := newBookingFixture()
	f.svc.Gateway = nil
	_, err := f.svc.Create(context.Background(), trekInput(model.PaymentFull))
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	if f.mem.Bookings().Count() != 0 {
		t.Fatalf("booking stored without a gateway")
	}
}

func TestCreateBookingRejectsOversizedParty(t *testing.T) {
	f := newBookingFixture()
	in := trekInput(model.PaymentFull)
	in.Guests = MaxGuests + 1
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	in.Guests = 5_000_000_000_000_000
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if f.mem.Bookings().Count() != 0 || len(f.gw.Created) != 0 {
		t.Fatalf("rejected request must not write or reach the gateway")
	}
}

func TestCreateBookingAmountOutOfRange(t *testing.T) {
	f := newBookingFixture()
	// the total fits in int64 but not once converted to minor units
	tour := f.tour(t, 10, math.MaxInt64/200)
	in := trekInput(model.PaymentFull)
	in.TourID = tour.ID
	if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if f.mem.Bookings().Count() != 0 || len(f.gw.Created) != 0 {
		t.Fatalf("rejected request must not write or reach the gateway")
	}
}

func TestVerifyRejectsOtherUsersBooking(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.gw.SetStatus(res.Order.ID, payment.StatusPaid)
	in := VerifyBookingInput{UserID: "u2", BookingID: res.Booking.ID, OrderID: res.Order.ID}
	if _, err := f.svc.Verify(ctx, in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	b, _ := f.mem.Bookings().GetByID(ctx, res.Booking.ID)
	if b.Payment {
		t.Fatalf("booking confirmed by a stranger")
	}
	in.UserID = "u1"
	if ok, err := f.svc.Verify(ctx, in); err != nil || !ok {
		t.Fatalf("owner: ok=%v err=%v", ok, err)
	}
	f.svc.Wait()
}

// stallingSender blocks until release is closed.
type stallingSender struct {
	release chan struct{}
	sent    chan notify.Notification
}

func (s *stallingSender) Send(ctx context.Context, n notify.Notification) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.sent <- n
	return nil
}

func TestVerifyDoesNotWaitForNotification(t *testing.T) {
	f := newBookingFixture()
	sender := &stallingSender{release: make(chan struct{}), sent: make(chan notify.Notification, 1)}
	f.svc.Sender = sender
	ctx, cancel := context.WithCancel(context.Background())

	res, err := f.svc.Create(ctx, trekInput(model.PaymentFull))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.gw.SetStatus(res.Order.ID, payment.StatusPaid)
	if ok, err := f.svc.Verify(ctx, VerifyBookingInput{BookingID: res.Booking.ID, OrderID: res.Order.ID}); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("notification delivered before the sender was released")
	}

	// the request context ending must not abort the send
	cancel()
	close(sender.release)
	f.svc.Wait()
	select {
	case n := <-sender.sent:
		if n.To != "asha@example.com" {
			t.Fatalf("unexpected recipient %q", n.To)
		}
	default:
		t.Fatalf("notification was dropped")
	}
}
