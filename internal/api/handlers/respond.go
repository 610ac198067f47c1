package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

// responseEnvelope is the uniform JSON shape of every API response.
type responseEnvelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(responseEnvelope{
		Success:   true,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	})
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(responseEnvelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// respondWithAppError maps the error taxonomy to HTTP statuses, hiding
// internal detail behind the fallback message.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
			return
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusServiceUnavailable, fallback)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
