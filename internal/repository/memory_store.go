package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"smartair-backend/internal/models"
)

type memoryEntry struct {
	seq         uint64
	reservation *models.Reservation
}

// MemoryStore keeps reservations in process memory. State is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	nextSeq uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Insert(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[r.ID]; exists {
		return fmt.Errorf("insert %s: %w", r.ID, ErrAlreadyExists)
	}
	s.nextSeq++
	s.entries[r.ID] = &memoryEntry{seq: s.nextSeq, reservation: r.Clone()}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.reservation.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error) {
	s.mu.RLock()
	matched := make([]*memoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Status != nil && e.reservation.Status != *filter.Status {
			continue
		}
		matched = append(matched, &memoryEntry{seq: e.seq, reservation: e.reservation.Clone()})
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.reservation.CreatedAt.Equal(b.reservation.CreatedAt) {
			return a.reservation.CreatedAt.After(b.reservation.CreatedAt)
		}
		return a.seq > b.seq
	})

	limit := ClampLimit(filter.Limit)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*models.Reservation, len(matched))
	for i, e := range matched {
		out[i] = e.reservation
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(r *models.Reservation) error) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := e.reservation.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	e.reservation = next
	return next.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}
