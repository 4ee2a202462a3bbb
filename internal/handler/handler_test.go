package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/media"
	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/service"
	"github.com/iliyamo/tour-shop-backend/internal/testutil"
)

type request struct {
	method string
	body   string
	form   url.Values
	param  string
	userID string
	role   string
}

func serve(t *testing.T, h echo.HandlerFunc, r request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if r.form != nil {
		req = httptest.NewRequest(r.method, "/", strings.NewReader(r.form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(r.method, "/", strings.NewReader(r.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if r.param != "" {
		c.SetParamNames("id")
		c.SetParamValues(r.param)
	}
	if r.userID != "" {
		c.Set("user_id", r.userID)
		c.Set("role", r.role)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

type bookingEnv struct {
	mem    *testutil.Mem
	gw     *testutil.FakeGateway
	sender *testutil.RecordingSender
	svc    *service.BookingService
	h      *BookingHandler
	tour   *model.Tour
}

func newBookingEnv(t *testing.T, seats int) *bookingEnv {
	t.Helper()
	mem := testutil.NewMem()
	gw := testutil.NewFakeGateway()
	sender := &testutil.RecordingSender{}
	tour := &model.Tour{Name: "Ridge Walk", Price: 1200, TotalSeats: seats, AvailableSeats: seats, Status: model.TourPublished}
	if err := mem.Tours().Create(context.Background(), tour); err != nil {
		t.Fatal(err)
	}
	svc := &service.BookingService{
		Bookings: mem.Bookings(),
		Tours:    mem.Tours(),
		Gateway:  gw,
		Sender:   sender,
		Locker:   service.NopLocker{},
		Log:      zap.NewNop(),
		Currency: "INR",
	}
	return &bookingEnv{mem: mem, gw: gw, sender: sender, svc: svc, tour: tour,
		h: &BookingHandler{Bookings: svc, Tours: mem.Tours(), Currency: "INR", Log: zap.NewNop()}}
}

func (env *bookingEnv) create(t *testing.T, guests int) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Asha","email":"asha@example.com","guests":%d,"tourId":%q}`, guests, env.tour.ID)
	rec, out := serve(t, env.h.Create, request{method: http.MethodPost, body: body, userID: "u1", role: model.RoleUser})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	id, _ := out["bookingId"].(string)
	if id == "" {
		t.Fatalf("create: no bookingId in %v", out)
	}
	return id
}

func (env *bookingEnv) availableSeats(t *testing.T) int {
	t.Helper()
	tour, err := env.mem.Tours().GetByID(context.Background(), env.tour.ID)
	if err != nil {
		t.Fatal(err)
	}
	return tour.AvailableSeats
}

func TestBookingCreateThenVerify(t *testing.T) {
	env := newBookingEnv(t, 10)
	id := env.create(t, 2)

	verify := fmt.Sprintf(`{"bookingId":%q,"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`, id)
	rec, out := serve(t, env.h.Verify, request{method: http.MethodPost, body: verify, userID: "u1"})
	if rec.Code != http.StatusOK || out["success"] != false {
		t.Fatalf("pending payment: expected 200 success=false, got %d %v", rec.Code, out)
	}
	if got := env.availableSeats(t); got != 10 {
		t.Fatalf("seats taken before payment: %d", got)
	}

	env.gw.SetStatus("order_1", payment.StatusPaid)
	for i := 0; i < 2; i++ {
		rec, out = serve(t, env.h.Verify, request{method: http.MethodPost, body: verify, userID: "u1"})
		if rec.Code != http.StatusOK || out["confirmed"] != true {
			t.Fatalf("verify #%d: expected confirmed, got %d %v", i+1, rec.Code, out)
		}
	}
	if got := env.availableSeats(t); got != 8 {
		t.Fatalf("expected 8 seats left, got %d", got)
	}
	env.svc.Wait()
	if n := len(env.sender.Sent()); n != 1 {
		t.Fatalf("expected one notification, got %d", n)
	}
}

func TestBookingVerifyRejectsForeignOrder(t *testing.T) {
	env := newBookingEnv(t, 5)
	id := env.create(t, 1)
	env.gw.SetStatus("order_9", payment.StatusPaid)

	body := fmt.Sprintf(`{"bookingId":%q,"razorpay_order_id":"order_9"}`, id)
	rec, out := serve(t, env.h.Verify, request{method: http.MethodPost, body: body, userID: "u1"})
	if rec.Code != http.StatusBadRequest || out["success"] != false {
		t.Fatalf("expected 400, got %d %v", rec.Code, out)
	}
	if got := env.availableSeats(t); got != 5 {
		t.Fatalf("seats changed: %d", got)
	}
}

func TestBookingVerifyOwnerOnly(t *testing.T) {
	env := newBookingEnv(t, 5)
	id := env.create(t, 2)
	env.gw.SetStatus("order_1", payment.StatusPaid)

	body := fmt.Sprintf(`{"bookingId":%q,"razorpay_order_id":"order_1"}`, id)
	rec, _ := serve(t, env.h.Verify, request{method: http.MethodPost, body: body, userID: "u2", role: model.RoleUser})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stranger: expected 404, got %d", rec.Code)
	}
	if got := env.availableSeats(t); got != 5 {
		t.Fatalf("seats changed: %d", got)
	}
	rec, out := serve(t, env.h.Verify, request{method: http.MethodPost, body: body, userID: "u1", role: model.RoleUser})
	if rec.Code != http.StatusOK || out["confirmed"] != true {
		t.Fatalf("owner: expected confirmed, got %d %v", rec.Code, out)
	}
	env.svc.Wait()
}

func TestBookingCreateOverCapacity(t *testing.T) {
	env := newBookingEnv(t, 3)
	body := fmt.Sprintf(`{"name":"Asha","email":"asha@example.com","guests":4,"tourId":%q}`, env.tour.ID)
	rec, _ := serve(t, env.h.Create, request{method: http.MethodPost, body: body, userID: "u1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if env.mem.Bookings().Count() != 0 {
		t.Fatalf("booking stored despite capacity error")
	}
}

func TestBookingReceiptOwnerOnly(t *testing.T) {
	env := newBookingEnv(t, 5)
	id := env.create(t, 1)

	rec, _ := serve(t, env.h.Receipt, request{method: http.MethodGet, param: id, userID: "u2", role: model.RoleUser})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stranger: expected 404, got %d", rec.Code)
	}
	rec, _ = serve(t, env.h.Receipt, request{method: http.MethodGet, param: id, userID: "u1", role: model.RoleUser})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatalf("body is not a PDF")
	}
}

func TestVerifyStripeFailureDeletesUnpaidOrder(t *testing.T) {
	mem := testutil.NewMem()
	ctx := context.Background()
	unpaid := &model.Order{UserID: "u1", Amount: 50, PaymentMethod: model.PaymentStripe, Status: model.OrderStatusPlaced}
	paid := &model.Order{UserID: "u1", Amount: 50, PaymentMethod: model.PaymentStripe, Status: model.OrderStatusPlaced, Payment: true}
	for _, o := range []*model.Order{unpaid, paid} {
		if err := mem.Orders().Create(ctx, o); err != nil {
			t.Fatal(err)
		}
	}
	h := &OrderHandler{Log: zap.NewNop(), Orders: &service.OrderService{
		Orders: mem.Orders(), Products: mem.Products(), Carts: mem.Users(), Log: zap.NewNop(),
	}}

	body := fmt.Sprintf(`{"orderId":%q,"success":"false"}`, unpaid.ID)
	rec, out := serve(t, h.VerifyStripe, request{method: http.MethodPost, body: body, userID: "u1"})
	if rec.Code != http.StatusOK || out["success"] != false {
		t.Fatalf("expected 200 success=false, got %d %v", rec.Code, out)
	}
	if _, err := mem.Orders().GetByID(ctx, unpaid.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unpaid order still present: %v", err)
	}

	body = fmt.Sprintf(`{"orderId":%q,"success":false}`, paid.ID)
	rec, _ = serve(t, h.VerifyStripe, request{method: http.MethodPost, body: body, userID: "u1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("paid order: expected 409, got %d", rec.Code)
	}
	if _, err := mem.Orders().GetByID(ctx, paid.ID); err != nil {
		t.Fatalf("paid order was removed: %v", err)
	}
}

func TestTourUpdateKeepsSoldSeats(t *testing.T) {
	mem := testutil.NewMem()
	tour := &model.Tour{Name: "Lake Loop", Price: 900, TotalSeats: 10, AvailableSeats: 6, Status: model.TourPublished}
	if err := mem.Tours().Create(context.Background(), tour); err != nil {
		t.Fatal(err)
	}
	h := &TourHandler{Tours: mem.Tours(), Log: zap.NewNop()}

	rec, _ := serve(t, h.Update, request{method: http.MethodPost, form: url.Values{"id": {tour.ID}, "totalSeats": {"3"}}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("below sold: expected 400, got %d", rec.Code)
	}

	rec, _ = serve(t, h.Update, request{method: http.MethodPost, form: url.Values{"id": {tour.ID}, "totalSeats": {"12"}}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	got, _ := mem.Tours().GetByID(context.Background(), tour.ID)
	if got.TotalSeats != 12 || got.AvailableSeats != 8 {
		t.Fatalf("expected 12/8, got %d/%d", got.TotalSeats, got.AvailableSeats)
	}
}

type memContacts struct{ list []model.Contact }

func (m *memContacts) Create(_ context.Context, c *model.Contact) error {
	c.ID = fmt.Sprintf("c%d", len(m.list)+1)
	m.list = append(m.list, *c)
	return nil
}
func (m *memContacts) List(context.Context) ([]model.Contact, error) { return m.list, nil }
func (m *memContacts) Delete(context.Context, string) error         { return repository.ErrNotFound }

func TestCreateContact(t *testing.T) {
	store := &memContacts{}
	h := &ContentHandler{Contacts: store, Log: zap.NewNop()}

	rec, _ := serve(t, h.CreateContact, request{method: http.MethodPost, body: `{"name":"Ravi","email":"nope","message":"hi"}`})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", rec.Code)
	}
	rec, _ = serve(t, h.CreateContact, request{method: http.MethodPost, body: `{"name":"Ravi","email":"ravi@example.com","message":"hi"}`})
	if rec.Code != http.StatusCreated || len(store.list) != 1 {
		t.Fatalf("expected stored contact, got %d (%d stored)", rec.Code, len(store.list))
	}
	rec, _ = serve(t, h.RemoveContact, request{method: http.MethodPost, body: `{"id":"missing"}`})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing: expected 404, got %d", rec.Code)
	}
}

func TestFromErrorEnvelope(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("wrapped: %w", repository.ErrNotFound), http.StatusNotFound, "not found"},
		{repository.ErrEmailExists, http.StatusConflict, "User already exists"},
		{fmt.Errorf("%w: boom", media.ErrUpload), http.StatusBadGateway, "image upload failed"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "request timed out"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		h := func(c echo.Context) error { return fromError(c, zap.NewNop(), tc.err) }
		rec, out := serve(t, h, request{method: http.MethodGet})
		if rec.Code != tc.status || out["message"] != tc.msg || out["success"] != false {
			t.Errorf("%v: got %d %v", tc.err, rec.Code, out)
		}
	}
}
