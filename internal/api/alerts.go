package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
)

// handleListAlerts returns stored alerts, newest first.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpRead); err != nil {
		writeDomainError(w, err)
		return
	}

	alerts, err := s.alerts.List(r.Context(), parseLimit(r, 0))
	if err != nil {
		s.logger.Error("alert list failed", "error", err)
		writePersistenceError(w, "failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleAckAlert acknowledges an alert. Admin only; re-acknowledging is a
// no-op that keeps the first acknowledger.
func (s *Server) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.alerts.Acknowledge(r.Context(), id, actor.Username); err != nil {
		writeDomainError(w, err)
		return
	}

	s.recordActivity(r.Context(), actor, activity.ActionAlertAcknowledged, map[string]any{
		"alert_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
