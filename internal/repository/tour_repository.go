package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// TourRepo manages persistence for tours.
type TourRepo struct {
	db *sql.DB
}

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

const tourColumns = `id, name, type, start_date, end_date, price, total_seats, available_seats,
	description, highlights, duration, image, status, created_at`

func scanTour(s rowScanner) (*model.Tour, error) {
	var t model.Tour
	err := s.Scan(&t.ID, &t.Name, &t.Type, &t.StartDate, &t.EndDate, &t.Price, &t.TotalSeats, &t.AvailableSeats,
		&t.Description, &t.Highlights, &t.Duration, &t.Image, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// Create inserts t.  ID and CreatedAt are assigned when empty.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO tours (id, name, type, start_date, end_date, price, total_seats, available_seats,
		description, highlights, duration, image, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.Name, t.Type, t.StartDate.UTC(), t.EndDate.UTC(), t.Price,
		t.TotalSeats, t.AvailableSeats, t.Description, t.Highlights, t.Duration, t.Image, t.Status, t.CreatedAt)
	return err
}

// GetByID returns ErrNotFound when the tour does not exist.
func (r *TourRepo) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	return scanTour(r.db.QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = ?`, id))
}

// List returns tours ordered by start date.  An empty status lists all.
func (r *TourRepo) List(ctx context.Context, status string) ([]model.Tour, error) {
	q := `SELECT ` + tourColumns + ` FROM tours`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY start_date ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields.  Seat counts are written as given;
// the caller keeps available = total - sold.  The available_seats guard in
// the WHERE clause rejects an update that raced with a confirmation.
func (r *TourRepo) Update(ctx context.Context, t *model.Tour, expectedAvailable int) error {
	const q = `UPDATE tours SET name = ?, type = ?, start_date = ?, end_date = ?, price = ?, total_seats = ?,
		available_seats = ?, description = ?, highlights = ?, duration = ?, image = ?, status = ?
		WHERE id = ? AND available_seats = ?`
	err := affected(r.db.ExecContext(ctx, q, t.Name, t.Type, t.StartDate.UTC(), t.EndDate.UTC(), t.Price,
		t.TotalSeats, t.AvailableSeats, t.Description, t.Highlights, t.Duration, t.Image, t.Status,
		t.ID, expectedAvailable))
	if err == ErrNotFound {
		if _, getErr := r.GetByID(ctx, t.ID); getErr == nil {
			return ErrConflict
		}
	}
	return err
}

// Delete removes the tour.
func (r *TourRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id))
}
