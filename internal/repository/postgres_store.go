package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartair-backend/internal/models"
)

const reservationColumns = `id, name, email, phone, address, reservation_type,
	preferred_date, preferred_time, message, selected_products, status,
	created_at, updated_at, admin_note`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		r.ID, r.Name, r.Email, r.Phone, r.Address, r.ReservationType,
		r.PreferredDate, r.PreferredTime, r.Message, r.SelectedProducts, r.Status,
		r.CreatedAt, r.UpdatedAt, r.AdminNote,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert %s: %w", r.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	r, err := scanReservation(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error) {
	var args []interface{}
	where := ""
	if filter.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *filter.Status)
	}
	args = append(args, ClampLimit(filter.Limit))

	query := fmt.Sprintf(`SELECT %s FROM reservations %s
		ORDER BY created_at DESC, seq DESC LIMIT $%d`, reservationColumns, where, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id string, mutate func(r *models.Reservation) error) (*models.Reservation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	r, err := scanReservation(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := mutate(r); err != nil {
		return nil, err
	}
	r.ID = id

	_, err = tx.Exec(ctx, `UPDATE reservations SET
		name = $2, email = $3, phone = $4, address = $5, reservation_type = $6,
		preferred_date = $7, preferred_time = $8, message = $9, selected_products = $10,
		status = $11, updated_at = $12, admin_note = $13
		WHERE id = $1`,
		r.ID, r.Name, r.Email, r.Phone, r.Address, r.ReservationType,
		r.PreferredDate, r.PreferredTime, r.Message, r.SelectedProducts,
		r.Status, r.UpdatedAt, r.AdminNote,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM reservations WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	r := &models.Reservation{}
	err := row.Scan(
		&r.ID, &r.Name, &r.Email, &r.Phone, &r.Address, &r.ReservationType,
		&r.PreferredDate, &r.PreferredTime, &r.Message, &r.SelectedProducts, &r.Status,
		&r.CreatedAt, &r.UpdatedAt, &r.AdminNote,
	)
	if err != nil {
		return nil, err
	}
	// pgx scans timestamptz into time.Local.
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}
