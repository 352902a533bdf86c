package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"poolpay/internal/domain"
	"poolpay/pkg/logger"
)

// Response is the common envelope for all endpoints
type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: status < 400, Data: data})
}

func sendError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   &ErrorResponse{Type: errType, Message: message},
	})
}

// sendServiceError maps domain errors onto HTTP statuses. NotAllowed reasons
// pass through verbatim since callers match on them.
func sendServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var notAllowed *domain.NotAllowedError
	switch {
	case errors.As(err, &notAllowed):
		sendError(w, http.StatusForbidden, "not_allowed", notAllowed.Reason)
	case errors.Is(err, domain.ErrInvalidAmount):
		sendError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	default:
		log.WithError(err).Error("Request failed")
		sendError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
