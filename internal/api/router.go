package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Device endpoints (X-API-Key)
		r.Route("/device", func(r chi.Router) {
			r.Use(s.deviceAuthMiddleware)

			r.Post("/readings", s.handleDeviceReadings)
			r.Post("/events", s.handleDeviceEvents)
			r.Post("/heartbeat", s.handleDeviceHeartbeat)
			r.Post("/alerts", s.handleDeviceAlerts)
		})

		// WebSocket authenticates inside the handler (token query parameter),
		// so it sits outside the bearer-header group.
		r.Get("/ws", s.handleWebSocket)

		// Session routes (JWT bearer)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			r.Get("/thresholds", s.handleGetThresholds)
			r.Patch("/thresholds", s.handlePatchThresholds)

			r.Post("/control/command", s.handleCommand)
			r.Post("/control/auto/resume", s.handleResumeAuto)

			r.Get("/readings", s.handleListReadings)
			r.Get("/readings/export", s.handleExportReadings)
			r.Get("/status", s.handlePiStatus)

			r.Get("/alerts", s.handleListAlerts)
			r.Post("/alerts/{id}/ack", s.handleAckAlert)

			r.Get("/activity", s.handleListActivity)
			r.Get("/activity/export", s.handleExportActivity)

			r.Get("/presence", s.handleListPresence)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/status", s.handleUpdateUserStatus)
					r.Patch("/role", s.handleUpdateUserRole)
					r.Delete("/", s.handleDeleteUser)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
