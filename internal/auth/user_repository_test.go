package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{
		Username:     "testuser",
		PasswordHash: hash,
		Role:         RoleUser,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Username != "testuser" {
		t.Errorf("Username = %q, want %q", got.Username, "testuser")
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	if got.Status != StatusActive {
		t.Errorf("Status = %q, want %q (default)", got.Status, StatusActive)
	}
	if got.IsOnline {
		t.Error("IsOnline should be false for a new account")
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should be populated")
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	if got.ID != user.ID {
		t.Errorf("ID = %q, want %q", got.ID, user.ID)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByUsername(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user1 := &User{Username: "duplicate", PasswordHash: hash, Role: RoleUser}
	if err := repo.Create(ctx, user1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user2 := &User{Username: "duplicate", PasswordHash: hash, Role: RoleUser}
	err := repo.Create(ctx, user2)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("error = %v, want ErrUsernameExists", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Empty list
	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() should return empty, got %d", len(users))
	}

	// Add users
	hash, _ := HashPassword("password123")
	for _, name := range []string{"alice", "bob", "charlie"} {
		u := &User{Username: name, PasswordHash: hash, Role: RoleUser}
		if err := repo.Create(ctx, u); err != nil { //nolint:govet // shadow: err re-declared in test loop
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("List() returned %d users, want 3", len(users))
	}
}

func TestUserRepository_UpdateStatus(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "statuschange", RoleUser, StatusActive)

	if err := repo.UpdateStatus(ctx, user.ID, StatusBanned); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, user.ID)
	if got.Status != StatusBanned {
		t.Errorf("Status = %q, want %q", got.Status, StatusBanned)
	}

	err := repo.UpdateStatus(ctx, "nonexistent", StatusBanned)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "rolechange", RoleUser, StatusActive)

	if err := repo.UpdateRole(ctx, user.ID, RoleAdmin); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, user.ID)
	if got.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, RoleAdmin)
	}
}

func TestUserRepository_OnlineFlags(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := seedTestUser(t, db, "online-a", RoleUser, StatusActive)
	b := seedTestUser(t, db, "online-b", RoleUser, StatusActive)

	if err := repo.SetOnline(ctx, a.ID, true); err != nil {
		t.Fatalf("SetOnline() error = %v", err)
	}
	if err := repo.SetOnline(ctx, b.ID, true); err != nil {
		t.Fatalf("SetOnline() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, a.ID)
	if !got.IsOnline {
		t.Error("IsOnline should be true after SetOnline")
	}

	// Startup reset clears everything.
	if err := repo.ResetOnline(ctx); err != nil {
		t.Fatalf("ResetOnline() error = %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		got, _ := repo.GetByID(ctx, id)
		if got.IsOnline {
			t.Errorf("user %s should be offline after ResetOnline", id)
		}
	}
}

func TestUserRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "deleteme", RoleUser, StatusActive)

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.GetByID(ctx, user.ID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("after delete, GetByID error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	err := repo.Delete(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Count(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	seedTestUser(t, db, "one", RoleUser, StatusActive)
	seedTestUser(t, db, "two", RoleUser, StatusActive)

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
