package auth

import (
	"errors"
	"testing"
)

func TestAuthorize_RestrictedReadOnly(t *testing.T) {
	restricted := &User{ID: "usr-r", Role: RoleAdmin, Status: StatusRestricted}

	if err := Authorize(restricted, OpRead); err != nil {
		t.Errorf("restricted account should be allowed to read, got %v", err)
	}

	// Every non-read class is forbidden, regardless of rank.
	for _, op := range []OpClass{OpWrite, OpAdminAction, OpHeadAdminAction} {
		err := Authorize(restricted, op)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Authorize(restricted, %s) = %v, want ErrForbidden", op, err)
		}
	}
}

func TestAuthorize_RoleTiers(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		op      OpClass
		wantErr bool
	}{
		{"user read", RoleUser, OpRead, false},
		{"user write", RoleUser, OpWrite, false},
		{"user admin action", RoleUser, OpAdminAction, true},
		{"user head admin action", RoleUser, OpHeadAdminAction, true},
		{"admin write", RoleAdmin, OpWrite, false},
		{"admin admin action", RoleAdmin, OpAdminAction, false},
		{"admin head admin action", RoleAdmin, OpHeadAdminAction, true},
		{"head admin admin action", RoleHeadAdmin, OpAdminAction, false},
		{"head admin head admin action", RoleHeadAdmin, OpHeadAdminAction, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{ID: "usr-1", Role: tt.role, Status: StatusActive}
			err := Authorize(u, tt.op)
			if (err != nil) != tt.wantErr {
				t.Errorf("Authorize(%s, %s) error = %v, wantErr %v", tt.role, tt.op, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrForbidden) {
				t.Errorf("error should wrap ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorize_UnknownClass(t *testing.T) {
	u := &User{ID: "usr-1", Role: RoleHeadAdmin, Status: StatusActive}
	if err := Authorize(u, OpClass("bogus")); !errors.Is(err, ErrForbidden) {
		t.Errorf("unknown op class should be forbidden, got %v", err)
	}
}

func TestAuthorizeTarget_HeadAdminUntouchable(t *testing.T) {
	head := &User{ID: "usr-head", Role: RoleHeadAdmin, Status: StatusActive}
	otherHead := &User{ID: "usr-head2", Role: RoleHeadAdmin, Status: StatusActive}
	admin := &User{ID: "usr-adm", Role: RoleAdmin, Status: StatusActive}

	actions := []TargetAction{TargetBan, TargetRestrict, TargetDelete, TargetDemote}

	for _, action := range actions {
		// By an admin.
		if err := AuthorizeTarget(admin, head, action); !errors.Is(err, ErrForbidden) {
			t.Errorf("admin %s on head admin = %v, want ErrForbidden", action, err)
		}
		// By another head admin.
		if err := AuthorizeTarget(otherHead, head, action); !errors.Is(err, ErrForbidden) {
			t.Errorf("head admin %s on head admin = %v, want ErrForbidden", action, err)
		}
		// By themselves (self-demotion/self-ban included).
		if err := AuthorizeTarget(head, head, action); !errors.Is(err, ErrForbidden) {
			t.Errorf("head admin self-%s = %v, want ErrForbidden", action, err)
		}
	}
}

func TestAuthorizeTarget_AdminOnAdmin(t *testing.T) {
	actor := &User{ID: "usr-a", Role: RoleAdmin, Status: StatusActive}
	head := &User{ID: "usr-h", Role: RoleHeadAdmin, Status: StatusActive}
	target := &User{ID: "usr-b", Role: RoleAdmin, Status: StatusActive}

	// Plain admin may not delete or demote a fellow admin.
	for _, action := range []TargetAction{TargetDelete, TargetDemote} {
		if err := AuthorizeTarget(actor, target, action); !errors.Is(err, ErrForbidden) {
			t.Errorf("admin %s on admin = %v, want ErrForbidden", action, err)
		}
		if err := AuthorizeTarget(head, target, action); err != nil {
			t.Errorf("head admin %s on admin = %v, want nil", action, err)
		}
	}
}

func TestAuthorizeTarget_PlainUser(t *testing.T) {
	actor := &User{ID: "usr-a", Role: RoleAdmin, Status: StatusActive}
	target := &User{ID: "usr-u", Role: RoleUser, Status: StatusActive}

	for _, action := range []TargetAction{TargetBan, TargetRestrict, TargetDelete, TargetDemote} {
		if err := AuthorizeTarget(actor, target, action); err != nil {
			t.Errorf("admin %s on user = %v, want nil", action, err)
		}
	}
}
