package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        *auth.User `json:"user"`
}

// handleLogin authenticates an operator and returns a session JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeValidationError(w, "username and password are required")
		return
	}

	user, err := s.verifier.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	signed, err := auth.GenerateAccessToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		writePersistenceError(w, "failed to generate token")
		return
	}

	s.recordActivity(r.Context(), user, activity.ActionLogin, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
		User:        user,
	})
}

// handleLogout records the end of a session. The token itself is stateless;
// the client discards it and any live WebSocket connection is closed by the
// viewer side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.recordActivity(r.Context(), user, activity.ActionLogout, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleMe returns the authenticated account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	user.IsOnline = s.presence.IsOnline(user.ID)
	writeJSON(w, http.StatusOK, user)
}

// recordActivity appends to the activity trail. Trail failures are logged,
// never fatal to the request that triggered them.
func (s *Server) recordActivity(ctx context.Context, actor *auth.User, action activity.Action, detail map[string]any) {
	rec := &activity.Record{
		ActorID:   actor.ID,
		ActorName: actor.Username,
		Action:    action,
		Detail:    detail,
	}
	if err := s.activity.Append(ctx, rec); err != nil {
		s.logger.Error("activity record append failed", "action", action, "error", err)
	}
}
