package services

import (
	"testing"

	"smartair-backend/internal/models"
)

func TestStrictPolicy(t *testing.T) {
	tests := []struct {
		from, to models.ReservationStatus
		allowed  bool
	}{
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusApproved, models.StatusCompleted, true},
		{models.StatusApproved, models.StatusPending, false},
		{models.StatusCompleted, models.StatusPending, false},
		{models.StatusRejected, models.StatusApproved, false},
		{models.StatusCompleted, models.StatusCompleted, true},
	}

	for _, tc := range tests {
		err := StrictPolicy{}.Allow(tc.from, tc.to)
		if (err == nil) != tc.allowed {
			t.Errorf("%s -> %s: allowed=%v, err=%v", tc.from, tc.to, tc.allowed, err)
		}
	}
}

func TestParseStatusPolicy(t *testing.T) {
	if p, err := ParseStatusPolicy(""); err != nil || p != (OpenPolicy{}) {
		t.Errorf("expected open policy by default, got %v %v", p, err)
	}
	if p, err := ParseStatusPolicy("strict"); err != nil || p != (StrictPolicy{}) {
		t.Errorf("expected strict policy, got %v %v", p, err)
	}
	if _, err := ParseStatusPolicy("whatever"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
