package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// OrderRepo provides access to the orders table.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, items, amount, address, payment_method, payment, gateway_ref, status, created_at`

func scanOrder(s rowScanner) (*model.Order, error) {
	var (
		o   model.Order
		ref sql.NullString
	)
	err := s.Scan(&o.ID, &o.UserID, &o.Items, &o.Amount, &o.Address, &o.PaymentMethod, &o.Payment, &ref,
		&o.Status, &o.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	o.GatewayRef = ref.String
	return &o, nil
}

// Create inserts o.  ID and CreatedAt are assigned when empty.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO orders (id, user_id, items, amount, address, payment_method, payment, gateway_ref, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.UserID, o.Items, o.Amount, o.Address, o.PaymentMethod,
		o.Payment, nullable(o.GatewayRef), o.Status, o.CreatedAt)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
}

// GetByGatewayRef looks an order up by its Razorpay order / Stripe session id.
func (r *OrderRepo) GetByGatewayRef(ctx context.Context, ref string) (*model.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_ref = ? LIMIT 1`, ref))
}

func (r *OrderRepo) SetGatewayRef(ctx context.Context, id, ref string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE orders SET gateway_ref = ? WHERE id = ?`, ref, id))
}

// MarkPaid flips payment from false to true.  It reports false when the
// order was already paid.
func (r *OrderRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET payment = 1 WHERE id = ? AND payment = 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// DeleteUnpaid removes an order that has not been paid.  A paid order is
// never deleted; ErrConflict is returned instead.
func (r *OrderRepo) DeleteUnpaid(ctx context.Context, id string) error {
	err := affected(r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ? AND payment = 0`, id))
	if err == ErrNotFound {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return ErrConflict
		}
	}
	return err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id))
}

// List returns every order, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListByUser returns userID's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *OrderRepo) query(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
