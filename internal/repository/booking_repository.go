package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// BookingRepo provides access to the bookings table.  Confirmation runs in a
// single transaction together with the tour seat decrement.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, name, email, phone, booking_type, start_date, end_date, guests,
	payment_option, amount, total_amount, tour_id, gateway_order_id, status, payment, special_request, created_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b       model.Booking
		tourID  sql.NullString
		orderID sql.NullString
	)
	err := s.Scan(&b.ID, &b.UserID, &b.Name, &b.Email, &b.Phone, &b.BookingType, &b.StartDate, &b.EndDate,
		&b.Guests, &b.PaymentOption, &b.Amount, &b.TotalAmount, &tourID, &orderID, &b.Status, &b.Payment,
		&b.SpecialRequest, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	b.TourID = tourID.String
	b.GatewayOrderID = orderID.String
	return &b, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts b.  ID and CreatedAt are assigned when empty.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO bookings (id, user_id, name, email, phone, booking_type, start_date, end_date, guests,
		payment_option, amount, total_amount, tour_id, gateway_order_id, status, payment, special_request, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.UserID, b.Name, b.Email, b.Phone, b.BookingType,
		b.StartDate.UTC(), b.EndDate.UTC(), b.Guests, b.PaymentOption, b.Amount, b.TotalAmount,
		nullable(b.TourID), nullable(b.GatewayOrderID), b.Status, b.Payment, b.SpecialRequest, b.CreatedAt)
	return err
}

// GetByID returns ErrNotFound when no booking has the id.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// SetGatewayOrder attaches the gateway's order id to the booking.
func (r *BookingRepo) SetGatewayOrder(ctx context.Context, id, orderID string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE bookings SET gateway_order_id = ? WHERE id = ?`, orderID, id))
}

// ConfirmPaid marks the booking paid and Confirmed and, for tour bookings,
// takes the guests off the tour's available seats.  Both writes share one
// transaction.  It returns false without writing when the booking was
// already paid, so repeated confirmations decrement seats exactly once.
// ErrInsufficientSeats rolls the whole confirmation back.
func (r *BookingRepo) ConfirmPaid(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		paid   bool
		guests int
		tourID sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT payment, guests, tour_id FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&paid, &guests, &tourID)
	if err != nil {
		return false, notFound(err)
	}
	if paid {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET payment = 1, status = ? WHERE id = ? AND payment = 0`, model.BookingConfirmed, id); err != nil {
		return false, err
	}
	if tourID.Valid && tourID.String != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE tours SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?`,
			guests, tourID.String, guests)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, ErrInsufficientSeats
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// UpdateStatus stores status verbatim.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id))
}

// List returns every booking, newest first.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

// ListByUser returns the bookings made by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListByTour returns the bookings referencing tourID, newest first.
func (r *BookingRepo) ListByTour(ctx context.Context, tourID string) ([]model.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE tour_id = ? ORDER BY created_at DESC`, tourID)
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
