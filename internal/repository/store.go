package repository

import (
	"context"
	"errors"

	"smartair-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("reservation not found")
	ErrAlreadyExists = errors.New("reservation id already exists")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ReservationStore is keyed reservation storage. Every method is atomic with
// respect to the others. List returns newest first (created_at desc, ties by
// insertion order desc).
type ReservationStore interface {
	Insert(ctx context.Context, r *models.Reservation) error
	Get(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error)
	// Update loads the record, calls mutate on a private copy and persists
	// the result, all under the store's exclusion. An error from mutate
	// aborts the update.
	Update(ctx context.Context, id string, mutate func(r *models.Reservation) error) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// ClampLimit applies the default and the upper bound to a list limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
