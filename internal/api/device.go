package api

import (
	"encoding/json"
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
)

// Device-facing ingestion endpoints, authenticated by X-API-Key. Payload
// envelopes match the MQTT ingestion source so the edge controller can use
// either transport without reformatting.

// handleDeviceReadings accepts a batched sensor reading submission.
func (s *Server) handleDeviceReadings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Readings []ingest.Reading `json:"readings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	if err := s.ingest.SubmitReadings(r.Context(), req.Readings); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"stored": len(req.Readings)})
}

// handleDeviceEvents accepts a batched automation event submission.
func (s *Server) handleDeviceEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Events []ingest.AutomationEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	if err := s.ingest.SubmitEvents(r.Context(), req.Events); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"stored": len(req.Events)})
}

// handleDeviceHeartbeat overwrites the controller status snapshot.
func (s *Server) handleDeviceHeartbeat(w http.ResponseWriter, r *http.Request) {
	var status ingest.PiStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	if err := s.ingest.Heartbeat(r.Context(), &status); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

// handleDeviceAlerts accepts a batched alert submission.
func (s *Server) handleDeviceAlerts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Alerts []alert.Alert `json:"alerts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	if err := s.ingest.SubmitAlerts(r.Context(), req.Alerts); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"stored": len(req.Alerts)})
}
