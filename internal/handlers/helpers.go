package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"community-tickets/internal/models"
)

// errorBody is the error envelope every endpoint uses. The message is
// buyer-facing; details stay in the server log.
type errorBody struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Message: message}})
}

// decodeJSON decodes a request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeServiceError maps a service error onto an HTTP status. Sentinel
// errors carry their own buyer-safe messages; anything unrecognized is
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrTierNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrLeadNotFound),
		errors.Is(err, models.ErrCommunityNotFound),
		errors.Is(err, models.ErrDiscountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
