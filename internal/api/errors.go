package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/control"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
	"github.com/Vinyl-Lilith/GreenGiant/internal/relay"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// Error represents a structured error response. Code is a stable kind that
// clients may branch on; message is human-readable detail.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable error kinds carried on every failure response.
const (
	ErrCodeUnauthenticated  = "unauthenticated"
	ErrCodeAccountBanned    = "account_banned"
	ErrCodeForbidden        = "forbidden"
	ErrCodeValidation       = "validation_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeRelayTimeout     = "relay_timeout"
	ErrCodeRelayUnavailable = "relay_unavailable"
	ErrCodePersistence      = "persistence_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeValidationError writes a 400 validation error response.
func writeValidationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeValidation, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthenticated writes a 401 error response.
func writeUnauthenticated(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, message)
}

// writePersistenceError writes a 500 error response.
func writePersistenceError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodePersistence, message)
}

// writeDomainError maps a domain sentinel to its HTTP response. Handlers call
// it for any error crossing the API edge that they do not map themselves.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrAccountBanned):
		writeError(w, http.StatusForbidden, ErrCodeAccountBanned, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthenticated(w, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, alert.ErrNotFound),
		errors.Is(err, thresholds.ErrNotFound),
		errors.Is(err, ingest.ErrStatusNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, thresholds.ErrUnknownField),
		errors.Is(err, control.ErrUnknownActuator),
		errors.Is(err, activity.ErrInvalidAction),
		errors.Is(err, alert.ErrInvalidLevel),
		errors.Is(err, alert.ErrInvalidSource),
		errors.Is(err, ingest.ErrEmptyBatch):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, relay.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, ErrCodeRelayTimeout, err.Error())
	case errors.Is(err, relay.ErrUnavailable):
		writeError(w, http.StatusBadGateway, ErrCodeRelayUnavailable, err.Error())
	default:
		writePersistenceError(w, "internal error")
	}
}
