// Package activity keeps the append-only trail of operator actions. Records
// are never updated; they exist for the admin activity view and the Excel
// export, and are pruned by the retention sweeper after 30 days.
package activity

import "time"

// Action is the closed set of recordable operator actions.
type Action string

// Recordable actions.
const (
	ActionLogin             Action = "login"
	ActionLogout            Action = "logout"
	ActionThresholdUpdate   Action = "threshold_update"
	ActionManualControl     Action = "manual_control"
	ActionAutoModeResumed   Action = "auto_mode_resumed"
	ActionUserBanned        Action = "user_banned"
	ActionUserRestricted    Action = "user_restricted"
	ActionUserUnbanned      Action = "user_unbanned"
	ActionUserRoleChanged   Action = "user_role_changed"
	ActionUserDeleted       Action = "user_deleted"
	ActionAlertAcknowledged Action = "alert_acknowledged"
)

// IsValidAction checks whether the action belongs to the closed set.
func IsValidAction(a Action) bool {
	switch a {
	case ActionLogin, ActionLogout, ActionThresholdUpdate, ActionManualControl,
		ActionAutoModeResumed, ActionUserBanned, ActionUserRestricted,
		ActionUserUnbanned, ActionUserRoleChanged, ActionUserDeleted,
		ActionAlertAcknowledged:
		return true
	}
	return false
}

// Record is one entry in the activity trail.
type Record struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	Action    Action         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
