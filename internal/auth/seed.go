package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for a generated seed password.
const seedPasswordBytes = 16

// SeedHeadAdmin creates the initial head admin account on first boot if no
// users exist. When password is empty a random one is generated and logged —
// it must be changed immediately. Returns the password used (empty string if
// seeding was skipped).
func SeedHeadAdmin(ctx context.Context, userRepo UserRepository, username, password string, logger *slog.Logger) (string, error) {
	count, err := userRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping head admin seed")
		return "", nil
	}

	if username == "" {
		username = "head_admin"
	}

	generated := password == ""
	if generated {
		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(passwordBytes)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	head := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleHeadAdmin,
		Status:       StatusActive,
	}

	if err := userRepo.Create(ctx, head); err != nil {
		return "", fmt.Errorf("creating seed head admin: %w", err)
	}

	if generated {
		logger.Warn("seed head admin account created",
			"username", username,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed head admin account created", "username", username)
	}

	return password, nil
}
