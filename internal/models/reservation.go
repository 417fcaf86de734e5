package models

import "time"

type ReservationType string

const (
	ReservationInspection   ReservationType = "inspection"
	ReservationInstallation ReservationType = "installation"
	ReservationService      ReservationType = "service"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusRejected  ReservationStatus = "rejected"
	StatusCompleted ReservationStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Address          string            `json:"address"`
	ReservationType  ReservationType   `json:"reservation_type"`
	PreferredDate    string            `json:"preferred_date"`
	PreferredTime    string            `json:"preferred_time"`
	Message          *string           `json:"message"`
	SelectedProducts []string          `json:"selected_products"`
	Status           ReservationStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	AdminNote        *string           `json:"admin_note"`
}

// Clone returns a deep copy so stored records never alias caller memory.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	c := *r
	if r.Message != nil {
		m := *r.Message
		c.Message = &m
	}
	if r.AdminNote != nil {
		n := *r.AdminNote
		c.AdminNote = &n
	}
	if r.SelectedProducts != nil {
		c.SelectedProducts = append([]string(nil), r.SelectedProducts...)
	}
	return &c
}

type CreateReservationRequest struct {
	Name             string          `json:"name" validate:"min=2,max=100"`
	Email            string          `json:"email" validate:"required,email"`
	Phone            string          `json:"phone" validate:"min=9,max=20"`
	Address          string          `json:"address" validate:"min=5,max=200"`
	ReservationType  ReservationType `json:"reservation_type" validate:"omitempty,oneof=inspection installation service"`
	PreferredDate    string          `json:"preferred_date" validate:"required"`
	PreferredTime    string          `json:"preferred_time" validate:"required"`
	Message          *string         `json:"message"`
	SelectedProducts []string        `json:"selected_products"`
}

// UpdateReservationRequest is a partial update; nil fields are left untouched.
type UpdateReservationRequest struct {
	Status    *ReservationStatus `json:"status"`
	AdminNote *string            `json:"admin_note"`
}

type ListReservationsFilter struct {
	Status *ReservationStatus
	Limit  int
}

// ReservationEvent is pushed to admin websocket subscribers.
type ReservationEvent struct {
	Type        string       `json:"type"` // "created", "updated" or "deleted"
	Reservation *Reservation `json:"reservation"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
