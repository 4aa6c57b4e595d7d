package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
)

// createUserRequest is the request body for POST /users.
type createUserRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// minPasswordLength is the minimum accepted password length for new accounts.
const minPasswordLength = 8

// handleListUsers returns all registered accounts. Admin only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("user list failed", "error", err)
		writePersistenceError(w, "failed to list users")
		return
	}

	// Overlay live presence; the persisted flag is best-effort only.
	for i := range users {
		users[i].IsOnline = s.presence.IsOnline(users[i].ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser registers a new account. Admin only; granting admin or
// head_admin rank requires the head admin.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	if !auth.IsValidUsername(req.Username) {
		writeValidationError(w, "username must be 1-64 characters: letters, digits, dots, hyphens, underscores")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeValidationError(w, "password must be at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleUser
	}
	if !auth.IsValidRole(req.Role) {
		writeValidationError(w, "invalid role")
		return
	}
	if req.Role != auth.RoleUser {
		if err := auth.Authorize(actor, auth.OpHeadAdminAction); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		writePersistenceError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       auth.StatusActive,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// updateStatusRequest is the request body for PATCH /users/{id}/status.
type updateStatusRequest struct {
	Status auth.Status `json:"status"`
}

// handleUpdateUserStatus bans, restricts, or reactivates an account.
//
// Banning a live user performs the durable update first, then sends exactly
// one targeted force_disconnect to the user's current connection and closes it.
func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if !auth.IsValidStatus(req.Status) {
		writeValidationError(w, "invalid status")
		return
	}

	target, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	action := auth.TargetBan
	if req.Status == auth.StatusRestricted {
		action = auth.TargetRestrict
	}
	if err := auth.AuthorizeTarget(actor, target, action); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.users.UpdateStatus(r.Context(), target.ID, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	target.Status = req.Status

	s.recordActivity(r.Context(), actor, statusAction(req.Status), map[string]any{
		"target_id":   target.ID,
		"target_name": target.Username,
	})

	if req.Status == auth.StatusBanned {
		if conn, ok := s.presence.ConnectionOf(target.ID); ok {
			s.bus.PublishTo(conn, bus.TopicForceDisconnect, map[string]any{
				"reason": "account banned",
			})
			conn.Close()
		}
	}

	writeJSON(w, http.StatusOK, target)
}

// statusAction maps a new account status to its activity trail action.
func statusAction(status auth.Status) activity.Action {
	switch status {
	case auth.StatusBanned:
		return activity.ActionUserBanned
	case auth.StatusRestricted:
		return activity.ActionUserRestricted
	default:
		return activity.ActionUserUnbanned
	}
}

// updateRoleRequest is the request body for PATCH /users/{id}/role.
type updateRoleRequest struct {
	Role auth.Role `json:"role"`
}

// handleUpdateUserRole changes an account's rank. Head admin only.
func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpHeadAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if !auth.IsValidRole(req.Role) || req.Role == auth.RoleHeadAdmin {
		writeValidationError(w, "role must be user or admin")
		return
	}

	target, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := auth.AuthorizeTarget(actor, target, auth.TargetDemote); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.users.UpdateRole(r.Context(), target.ID, req.Role); err != nil {
		writeDomainError(w, err)
		return
	}
	oldRole := target.Role
	target.Role = req.Role

	s.recordActivity(r.Context(), actor, activity.ActionUserRoleChanged, map[string]any{
		"target_id":   target.ID,
		"target_name": target.Username,
		"from":        string(oldRole),
		"to":          string(req.Role),
	})

	writeJSON(w, http.StatusOK, target)
}

// handleDeleteUser removes an account. A live target is force-disconnected
// before the row is deleted.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	target, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := auth.AuthorizeTarget(actor, target, auth.TargetDelete); err != nil {
		writeDomainError(w, err)
		return
	}

	if conn, ok := s.presence.ConnectionOf(target.ID); ok {
		s.bus.PublishTo(conn, bus.TopicForceDisconnect, map[string]any{
			"reason": "account deleted",
		})
		conn.Close()
	}

	if err := s.users.Delete(r.Context(), target.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	s.recordActivity(r.Context(), actor, activity.ActionUserDeleted, map[string]any{
		"target_id":   target.ID,
		"target_name": target.Username,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
