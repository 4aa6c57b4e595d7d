package api

import (
	"encoding/json"
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/control"
)

// commandRequest is the request body for POST /control/command.
type commandRequest struct {
	Actuator string `json:"actuator"`
	State    bool   `json:"state"`
	Pwm      *int   `json:"pwm,omitempty"`
}

// handleCommand relays a manual actuator command to the edge controller.
// Relay failure is fatal end-to-end: nothing is recorded or broadcast.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpWrite); err != nil {
		writeDomainError(w, err)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if req.Actuator == "" {
		writeValidationError(w, "actuator is required")
		return
	}

	cmd := control.Command{
		Actuator: req.Actuator,
		State:    req.State,
		Pwm:      req.Pwm,
	}
	applied, err := s.orchestrator.ManualControl(r.Context(), actor, cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"actuator": applied.Actuator,
		"state":    applied.State,
		"pwm":      applied.Pwm,
	})
}

// handleResumeAuto returns actuator control to the automation loop.
func (s *Server) handleResumeAuto(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpWrite); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.orchestrator.ResumeAuto(r.Context(), actor); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "auto_mode_resumed"})
}
