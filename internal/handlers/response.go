package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"smartair-backend/internal/middleware"
	"smartair-backend/internal/models"
	"smartair-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		configErr     *services.ConfigurationError
		upstreamErr   *services.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationErr.Fields, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &configErr):
		log.Printf("[%s] configuration error: %v", r.Header.Get(middleware.RequestIDHeader), configErr)
		writeJSON(w, http.StatusInternalServerError, errorResp("NOT_CONFIGURED", configErr.Message, r))
	case errors.As(err, &upstreamErr):
		log.Printf("[%s] upstream error: %v", r.Header.Get(middleware.RequestIDHeader), upstreamErr)
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", upstreamErr.Error(), r))
	default:
		log.Printf("[%s] internal error: %v", r.Header.Get(middleware.RequestIDHeader), err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Internal server error", r))
	}
}

func invalidBody(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResp("VALIDATION_ERROR", "Invalid request body", r))
}
