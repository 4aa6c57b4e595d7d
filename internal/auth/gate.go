package auth

import "fmt"

// OpClass classifies an operation for authorisation purposes.
type OpClass string

// Operation classes, from least to most privileged.
const (
	// OpRead covers all read-only operations: current thresholds, stored
	// readings, alerts, presence.
	OpRead OpClass = "read"

	// OpWrite covers write-class operations available to every active
	// account: threshold changes, manual actuator control, resume-auto.
	OpWrite OpClass = "write"

	// OpAdminAction covers account management, activity trail access, and
	// alert acknowledgement.
	OpAdminAction OpClass = "admin_action"

	// OpHeadAdminAction covers operations reserved for the head admin,
	// such as changing account roles.
	OpHeadAdminAction OpClass = "head_admin_action"
)

// TargetAction is an admin action aimed at another account.
type TargetAction string

// Target actions checked by AuthorizeTarget.
const (
	TargetBan      TargetAction = "ban"
	TargetRestrict TargetAction = "restrict"
	TargetDelete   TargetAction = "delete"
	TargetDemote   TargetAction = "demote"
)

// Authorize decides whether the user may perform an operation of the given
// class. Rules are applied in priority order:
//
//  1. A restricted account may only read.
//  2. Admin actions require admin or head_admin rank.
//  3. Head admin actions require head_admin exactly.
//
// Banned accounts never reach this point: the verifier rejects them first.
// The decision has no side effects; all mutation happens downstream.
func Authorize(user *User, op OpClass) error {
	if user.Restricted() && op != OpRead {
		return fmt.Errorf("%w: account is restricted to read-only operations", ErrForbidden)
	}

	switch op {
	case OpRead, OpWrite:
		return nil
	case OpAdminAction:
		if !user.IsAdmin() {
			return fmt.Errorf("%w: admin rank required", ErrForbidden)
		}
		return nil
	case OpHeadAdminAction:
		if user.Role != RoleHeadAdmin {
			return fmt.Errorf("%w: head admin rank required", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown operation class %q", ErrForbidden, op)
	}
}

// AuthorizeTarget decides whether the actor may apply an admin action to the
// target account. It assumes the actor already passed Authorize for the
// operation class carrying the action.
//
// Rules:
//   - A head admin account may never be deleted, banned, restricted, or
//     demoted — by anyone, including another head admin or itself.
//   - A plain admin may not delete or demote another admin; only the head
//     admin may.
func AuthorizeTarget(actor, target *User, action TargetAction) error {
	if target.Role == RoleHeadAdmin {
		return fmt.Errorf("%w: head admin accounts cannot be modified", ErrForbidden)
	}

	if target.Role == RoleAdmin && actor.Role != RoleHeadAdmin {
		if action == TargetDelete || action == TargetDemote {
			return fmt.Errorf("%w: only the head admin may delete or demote an admin", ErrForbidden)
		}
	}

	return nil
}
