package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

func newMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func lockRow(paid bool, guests int, tourID any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"payment", "guests", "tour_id"}).AddRow(paid, guests, tourID)
}

func TestConfirmPaidDecrementsSeatsOnce(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT payment, guests, tour_id FROM bookings").WithArgs("b1").
		WillReturnRows(lockRow(false, 2, "t1"))
	mock.ExpectExec("UPDATE bookings SET payment = 1").WithArgs(model.BookingConfirmed, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tours SET available_seats").WithArgs(sqlmock.AnyArg(), "t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := repo.ConfirmPaid(context.Background(), "b1")
	if err != nil || !first {
		t.Fatalf("expected first confirmation, got %v %v", first, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmPaidAlreadyPaid(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT payment, guests, tour_id FROM bookings").WithArgs("b1").
		WillReturnRows(lockRow(true, 2, "t1"))
	mock.ExpectRollback()

	first, err := repo.ConfirmPaid(context.Background(), "b1")
	if err != nil || first {
		t.Fatalf("expected no-op, got %v %v", first, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmPaidInsufficientSeatsRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT payment, guests, tour_id FROM bookings").WithArgs("b1").
		WillReturnRows(lockRow(false, 5, "t1"))
	mock.ExpectExec("UPDATE bookings SET payment = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tours SET available_seats").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.ConfirmPaid(context.Background(), "b1")
	if !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmPaidGenericBookingSkipsSeats(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT payment, guests, tour_id FROM bookings").WithArgs("b2").
		WillReturnRows(lockRow(false, 3, nil))
	mock.ExpectExec("UPDATE bookings SET payment = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := repo.ConfirmPaid(context.Background(), "b2")
	if err != nil || !first {
		t.Fatalf("expected confirmation, got %v %v", first, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmPaidUnknownBooking(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT payment, guests, tour_id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"payment", "guests", "tour_id"}))
	mock.ExpectRollback()

	if _, err := repo.ConfirmPaid(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func orderRow(id string, paid bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "items", "amount", "address", "payment_method",
		"payment", "gateway_ref", "status", "created_at"}).
		AddRow(id, "u1", []byte(`[]`), 60, []byte(`{}`), model.PaymentStripe, paid, nil, model.OrderStatusPlaced, time.Now())
}

func TestOrderMarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectExec("UPDATE orders SET payment = 1").WithArgs("o1").WillReturnResult(sqlmock.NewResult(0, 1))
	first, err := repo.MarkPaid(context.Background(), "o1")
	if err != nil || !first {
		t.Fatalf("first: got %v %v", first, err)
	}

	mock.ExpectExec("UPDATE orders SET payment = 1").WithArgs("o1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM orders WHERE id").WithArgs("o1").WillReturnRows(orderRow("o1", true))
	first, err = repo.MarkPaid(context.Background(), "o1")
	if err != nil || first {
		t.Fatalf("repeat: got %v %v", first, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderDeleteUnpaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectExec("DELETE FROM orders").WithArgs("o1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeleteUnpaid(context.Background(), "o1"); err != nil {
		t.Fatalf("unpaid: %v", err)
	}

	mock.ExpectExec("DELETE FROM orders").WithArgs("o2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM orders WHERE id").WithArgs("o2").WillReturnRows(orderRow("o2", true))
	if err := repo.DeleteUnpaid(context.Background(), "o2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("paid: expected ErrConflict, got %v", err)
	}

	mock.ExpectExec("DELETE FROM orders").WithArgs("o3").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM orders WHERE id").WithArgs("o3").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if err := repo.DeleteUnpaid(context.Background(), "o3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTourUpdateDetectsRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewTourRepo(db)

	tour := &model.Tour{ID: "t1", Name: "Ridge", TotalSeats: 10, AvailableSeats: 7, Status: model.TourPublished}
	mock.ExpectExec("UPDATE tours SET").WillReturnResult(sqlmock.NewResult(0, 0))
	now := time.Now()
	mock.ExpectQuery("FROM tours WHERE id").WithArgs("t1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "type", "start_date", "end_date", "price", "total_seats",
			"available_seats", "description", "highlights", "duration", "image", "status", "created_at"}).
			AddRow("t1", "Ridge", "", now, now, 100, 10, 5, "", []byte(`[]`), "", "", model.TourPublished, now))

	if err := repo.Update(context.Background(), tour, 7); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRotateRefusesReplayedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(sqlmock.AnyArg(), "old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").WithArgs("u1", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	if err := repo.Rotate(context.Background(), "u1", "old", "new", exp); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(sqlmock.AnyArg(), "old").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	if err := repo.Rotate(context.Background(), "u1", "old", "newer", exp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replay: expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
