package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"smartair-backend/internal/models"
	"smartair-backend/internal/repository"
)

const maxIDAttempts = 5

// EventPublisher receives reservation lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ReservationEvent)
}

type ReservationService struct {
	store    repository.ReservationStore
	policy   StatusPolicy
	events   EventPublisher
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewReservationService(store repository.ReservationStore, policy StatusPolicy, events EventPublisher) *ReservationService {
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &ReservationService{
		store:    store,
		policy:   policy,
		events:   events,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:    newReservationID,
	}
}

// newReservationID returns eight hex characters.
func newReservationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *ReservationService) Create(ctx context.Context, req models.CreateReservationRequest) (*models.Reservation, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.PreferredDate = strings.TrimSpace(req.PreferredDate)
	req.PreferredTime = strings.TrimSpace(req.PreferredTime)

	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	if req.ReservationType == "" {
		req.ReservationType = models.ReservationInspection
	}

	now := s.now()
	r := &models.Reservation{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		ReservationType:  req.ReservationType,
		PreferredDate:    req.PreferredDate,
		PreferredTime:    req.PreferredTime,
		Message:          req.Message,
		SelectedProducts: req.SelectedProducts,
		Status:           models.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		r.ID = s.newID()
		err = s.store.Insert(ctx, r)
		if !errors.Is(err, repository.ErrAlreadyExists) {
			break
		}
		log.Printf("reservation id collision on %s, retrying", r.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}

	s.publish(ctx, "created", r)
	return r, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return r, nil
}

func (s *ReservationService) List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": invalidStatusMessage}}
	}
	filter.Limit = repository.ClampLimit(filter.Limit)
	return s.store.List(ctx, filter)
}

// Update applies only the fields present in req and refreshes updated_at.
func (s *ReservationService) Update(ctx context.Context, id string, req models.UpdateReservationRequest) (*models.Reservation, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": invalidStatusMessage}}
	}

	updated, err := s.store.Update(ctx, id, func(r *models.Reservation) error {
		if req.Status != nil {
			if err := s.policy.Allow(r.Status, *req.Status); err != nil {
				return &ValidationError{Fields: map[string]string{"status": err.Error()}}
			}
			r.Status = *req.Status
		}
		if req.AdminNote != nil {
			note := *req.AdminNote
			r.AdminNote = &note
		}

		now := s.now()
		if !now.After(r.UpdatedAt) {
			now = r.UpdatedAt.Add(time.Microsecond)
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.publish(ctx, "updated", updated)
	return updated, nil
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err)
	}
	s.publish(ctx, "deleted", &models.Reservation{ID: id})
	return nil
}

func (s *ReservationService) publish(ctx context.Context, kind string, r *models.Reservation) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, models.ReservationEvent{Type: kind, Reservation: r})
}

func translateStoreError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: "Reservation not found"}
	}
	return err
}

const invalidStatusMessage = "status must be one of pending, approved, rejected, completed"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, seen := fields[e.Field()]; seen {
			continue
		}
		fields[e.Field()] = fieldMessage(e)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("length must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("length must be at most %s characters", e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return e.Error()
	}
}
