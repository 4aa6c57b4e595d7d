package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is a regular operator: can view live data and issue
	// write-class operations (thresholds, manual actuator control).
	RoleUser Role = "user"

	// RoleAdmin can additionally manage user accounts, view the activity
	// trail, and acknowledge alerts. May not touch other admins.
	RoleAdmin Role = "admin"

	// RoleHeadAdmin is the top tier: manages admins, changes roles, and is
	// the only role that may delete or demote an admin. Head admin accounts
	// can never be banned, restricted, or deleted.
	RoleHeadAdmin Role = "head_admin"
)

// ValidRoles is the set of valid account roles.
var ValidRoles = []Role{RoleUser, RoleAdmin, RoleHeadAdmin}

// IsValidRole returns true if the role is a valid account role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Status represents an account's standing.
type Status string

const (
	// StatusActive is the normal state: all operations permitted per role.
	StatusActive Status = "active"

	// StatusBanned blocks every request, even with a structurally valid
	// credential. A banned user who is live gets force-disconnected.
	StatusBanned Status = "banned"

	// StatusRestricted permits read-class operations only.
	StatusRestricted Status = "restricted"
)

// ValidStatuses is the set of valid account statuses.
var ValidStatuses = []Status{StatusActive, StatusBanned, StatusRestricted}

// IsValidStatus returns true if the status is a valid account status.
func IsValidStatus(s Status) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// User represents a registered operator account.
//
// IsOnline is derived state owned by the presence registry; the persisted
// column is best-effort for dashboards and is rebuilt from zero on restart.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	IsOnline     bool      `json:"is_online"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Restricted reports whether the account is limited to read-class operations.
func (u *User) Restricted() bool {
	return u.Status == StatusRestricted
}

// IsAdmin reports whether the account holds admin or head_admin rank.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleHeadAdmin
}

// Sentinel errors for auth operations.
var (
	ErrUnauthenticated    = errors.New("missing or invalid credential")
	ErrAccountBanned      = errors.New("account is banned")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
