package auth

import (
	"context"
	"errors"
	"fmt"
)

// Verifier resolves a bearer credential to a registered account.
//
// Verification is a pure lookup plus a freshness check of the token's
// signature and expiry; it has no side effects. The account is always
// reloaded from the store so that status changes (ban, restriction) applied
// after token issue take effect on the very next request.
type Verifier struct {
	users  UserRepository
	secret string
}

// NewVerifier creates a credential verifier backed by the given repository.
func NewVerifier(users UserRepository, secret string) *Verifier {
	return &Verifier{users: users, secret: secret}
}

// Verify validates a bearer token and returns the account it identifies.
//
// Failure modes:
//   - ErrUnauthenticated: missing, malformed, badly signed, or expired
//     token, or a token whose subject no longer exists.
//   - ErrAccountBanned: structurally valid token, but the account status is
//     banned.
//
// A restricted account verifies successfully; the Restricted flag on the
// returned user is consumed by the command gate.
func (v *Verifier) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := ParseToken(token, v.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := v.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("loading user for verification: %w", err)
	}

	if user.Status == StatusBanned {
		return nil, ErrAccountBanned
	}

	return user, nil
}

// Login checks a username/password pair and returns the account on success.
// Banned accounts may not log in; the failure is indistinguishable from bad
// credentials only in timing, not in kind (the caller maps both to 401/403).
func (v *Verifier) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user for login: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.Status == StatusBanned {
		return nil, ErrAccountBanned
	}

	return user, nil
}
