package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smartair-backend/internal/models"
)

type reservationService interface {
	Create(ctx context.Context, req models.CreateReservationRequest) (*models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error)
	Update(ctx context.Context, id string, req models.UpdateReservationRequest) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type ReservationHandler struct {
	service reservationService
}

func NewReservationHandler(service reservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w, r)
		return
	}

	reservation, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.ListReservationsFilter

	if s := r.URL.Query().Get("status"); s != "" {
		status := models.ReservationStatus(s)
		filter.Status = &status
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"limit": "limit must be an integer"}, r))
			return
		}
		filter.Limit = limit
	}

	reservations, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w, r)
		return
	}

	reservation, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Reservation " + id + " deleted"})
}
