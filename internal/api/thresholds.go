package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/relay"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// thresholdsResponse is the response body for threshold reads and writes.
// SyncError carries the relay failure kind when a write could not reach the
// edge controller; the durable values are authoritative either way.
type thresholdsResponse struct {
	Thresholds thresholds.Set `json:"thresholds"`
	Synced     bool           `json:"synced"`
	SyncError  string         `json:"sync_error,omitempty"`
}

// handleGetThresholds returns the current durable threshold set.
func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpRead); err != nil {
		writeDomainError(w, err)
		return
	}

	set := s.thresholds.Get()
	writeJSON(w, http.StatusOK, thresholdsResponse{
		Thresholds: set,
		Synced:     set.LastSyncedAt != nil,
	})
}

// handlePatchThresholds applies a partial threshold update by field name.
//
// The durable write is authoritative: a relay failure still returns 200 with
// synced=false and the failure kind, never an error status.
func (s *Server) handlePatchThresholds(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpWrite); err != nil {
		writeDomainError(w, err)
		return
	}

	var changes map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeValidationError(w, "invalid JSON body: expected field/value pairs")
		return
	}
	if len(changes) == 0 {
		writeValidationError(w, "at least one threshold field is required")
		return
	}

	result, err := s.orchestrator.UpdateThresholds(r.Context(), actor, changes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := thresholdsResponse{
		Thresholds: result.Set,
		Synced:     result.Synced,
	}
	if result.SyncErr != nil {
		resp.SyncError = relayErrorKind(result.SyncErr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// relayErrorKind maps a relay failure to its stable kind string.
func relayErrorKind(err error) string {
	switch {
	case errors.Is(err, relay.ErrTimeout):
		return ErrCodeRelayTimeout
	case errors.Is(err, relay.ErrUnavailable):
		return ErrCodeRelayUnavailable
	default:
		return ErrCodeRelayUnavailable
	}
}
