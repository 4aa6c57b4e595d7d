package api

import (
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
)

// handleListPresence returns the currently online users.
func (s *Server) handleListPresence(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpRead); err != nil {
		writeDomainError(w, err)
		return
	}

	online := s.presence.OnlineUsers()
	writeJSON(w, http.StatusOK, map[string]any{
		"online": online,
		"count":  len(online),
	})
}
