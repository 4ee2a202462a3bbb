// Package repository implements the record store on MySQL.  The sentinel
// errors below let the service and handler layers distinguish failure
// scenarios without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound is returned when no row matches the requested identifier.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot proceed because of the
// current state of the row, e.g. deleting an order that is already paid.
var ErrConflict = errors.New("conflict")

// ErrInsufficientSeats is returned when a guarded seat decrement would push
// a tour's available seats below zero.
var ErrInsufficientSeats = errors.New("insufficient seats")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isDuplicate reports a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// affected returns ErrNotFound when an UPDATE/DELETE matched no row.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
