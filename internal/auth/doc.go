// Package auth provides authentication and authorisation for GreenGiant.
//
// It implements a 3-tier role model (user → admin → head_admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens validated by signature and expiry
//   - A credential verifier that reloads the account on every request, so
//     bans and restrictions take effect immediately
//   - A command gate that classifies operations (read, write, admin,
//     head admin) and enforces target rules for admin-on-admin actions
//
// Account status is orthogonal to role: a banned account fails verification
// outright; a restricted account verifies but only passes the gate for
// read-class operations. Head admin accounts can never be banned, restricted,
// or deleted.
package auth
