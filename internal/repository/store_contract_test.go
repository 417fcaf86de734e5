package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"smartair-backend/internal/database"
	"smartair-backend/internal/models"
)

func newReservation(id string, created time.Time, status models.ReservationStatus) *models.Reservation {
	return &models.Reservation{
		ID:        id,
		Name:      "Jan Novak",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// runStoreContract checks the behavior every ReservationStore shares.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) ReservationStore) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  func(t *testing.T, s ReservationStore)
	}{
		{"insert rejects duplicate id", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			if err := s.Insert(ctx, newReservation("aaaa1111", base, models.StatusPending)); err != nil {
				t.Fatalf("first insert failed: %v", err)
			}
			err := s.Insert(ctx, newReservation("aaaa1111", base, models.StatusApproved))
			if !errors.Is(err, ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}

			got, err := s.Get(ctx, "aaaa1111")
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != models.StatusPending {
				t.Fatalf("duplicate insert must not overwrite, got status %s", got.Status)
			}
			all, _ := s.List(ctx, models.ListReservationsFilter{})
			if len(all) != 1 {
				t.Fatalf("duplicate insert must not add an index entry, got %d records", len(all))
			}
		}},
		{"get missing", func(t *testing.T, s ReservationStore) {
			if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		}},
		{"get returns utc timestamps", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			s.Insert(ctx, newReservation("abc", base, models.StatusPending))

			got, err := s.Get(ctx, "abc")
			if err != nil {
				t.Fatal(err)
			}
			if !got.CreatedAt.Equal(base) || got.CreatedAt.Location() != time.UTC {
				t.Fatalf("expected created_at %s in UTC, got %s", base, got.CreatedAt)
			}
			if got.UpdatedAt.Location() != time.UTC {
				t.Fatalf("expected updated_at in UTC, got %s", got.UpdatedAt)
			}
		}},
		{"list ordering filter and limit", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			s.Insert(ctx, newReservation("first", base, models.StatusPending))
			s.Insert(ctx, newReservation("second", base.Add(time.Minute), models.StatusApproved))
			s.Insert(ctx, newReservation("third", base.Add(2*time.Minute), models.StatusPending))
			// Same timestamp as "third": insertion order breaks the tie.
			s.Insert(ctx, newReservation("fourth", base.Add(2*time.Minute), models.StatusPending))

			all, err := s.List(ctx, models.ListReservationsFilter{})
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"fourth", "third", "second", "first"}
			if len(all) != len(want) {
				t.Fatalf("expected %d records, got %d", len(want), len(all))
			}
			for i, id := range want {
				if all[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
				}
			}

			approved := models.StatusApproved
			filtered, err := s.List(ctx, models.ListReservationsFilter{Status: &approved})
			if err != nil {
				t.Fatal(err)
			}
			if len(filtered) != 1 || filtered[0].ID != "second" {
				t.Fatalf("expected only 'second', got %v", filtered)
			}

			limited, err := s.List(ctx, models.ListReservationsFilter{Limit: 1})
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 1 || limited[0].ID != "fourth" {
				t.Fatalf("expected only the newest record, got %v", limited)
			}
		}},
		{"update applies mutation and keeps other fields", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			r := newReservation("abc", base, models.StatusPending)
			note := "call first"
			r.AdminNote = &note
			s.Insert(ctx, r)

			later := base.Add(time.Hour)
			updated, err := s.Update(ctx, "abc", func(r *models.Reservation) error {
				r.Status = models.StatusApproved
				r.UpdatedAt = later
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if updated.Status != models.StatusApproved || !updated.UpdatedAt.Equal(later) {
				t.Fatalf("unexpected update result %+v", updated)
			}

			got, _ := s.Get(ctx, "abc")
			if got.Status != models.StatusApproved {
				t.Fatalf("update not persisted, got %s", got.Status)
			}
			if got.AdminNote == nil || *got.AdminNote != "call first" || got.Name != "Jan Novak" {
				t.Fatalf("untouched fields changed: %+v", got)
			}
			if !got.CreatedAt.Equal(base) {
				t.Fatalf("created_at changed to %s", got.CreatedAt)
			}
		}},
		{"update aborts on mutate error", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			s.Insert(ctx, newReservation("abc", base, models.StatusPending))

			boom := errors.New("boom")
			_, err := s.Update(ctx, "abc", func(r *models.Reservation) error {
				r.Status = models.StatusCompleted
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected mutate error, got %v", err)
			}

			got, _ := s.Get(ctx, "abc")
			if got.Status != models.StatusPending {
				t.Fatalf("failed update must not persist, got %s", got.Status)
			}
		}},
		{"update and delete missing", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			_, err := s.Update(ctx, "nope", func(r *models.Reservation) error { return nil })
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on update, got %v", err)
			}
			if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on delete, got %v", err)
			}
		}},
		{"delete removes record and index entry", func(t *testing.T, s ReservationStore) {
			ctx := context.Background()
			s.Insert(ctx, newReservation("keep", base, models.StatusPending))
			s.Insert(ctx, newReservation("gone", base.Add(time.Minute), models.StatusPending))

			if err := s.Delete(ctx, "gone"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, "gone"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, "gone"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}

			all, err := s.List(ctx, models.ListReservationsFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 || all[0].ID != "keep" {
				t.Fatalf("expected only 'keep' to remain, got %v", all)
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, newStore(t))
		})
	}
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) ReservationStore {
		return NewMemoryStore()
	})
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) ReservationStore {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return NewRedisStore(client)
	})
}

func TestPostgresStore_Contract(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := database.NewPostgresPool(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	if err := database.RunMigrations(pool, database.Migrations()); err != nil {
		t.Fatal(err)
	}

	runStoreContract(t, func(t *testing.T) ReservationStore {
		if _, err := pool.Exec(context.Background(), "TRUNCATE reservations"); err != nil {
			t.Fatal(err)
		}
		return NewPostgresStore(pool)
	})
}
