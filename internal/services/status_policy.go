package services

import (
	"fmt"

	"smartair-backend/internal/models"
)

// StatusPolicy decides whether a reservation may move between two statuses.
type StatusPolicy interface {
	Allow(from, to models.ReservationStatus) error
}

// OpenPolicy accepts every transition between known statuses.
type OpenPolicy struct{}

func (OpenPolicy) Allow(from, to models.ReservationStatus) error { return nil }

// StrictPolicy permits pending→approved|rejected and approved→completed.
// Re-applying the current status is always allowed.
type StrictPolicy struct{}

var strictTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {models.StatusCompleted},
}

func (StrictPolicy) Allow(from, to models.ReservationStatus) error {
	if from == to {
		return nil
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("cannot change status from %s to %s", from, to)
}

func ParseStatusPolicy(name string) (StatusPolicy, error) {
	switch name {
	case "", "open":
		return OpenPolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown status policy %q", name)
}
