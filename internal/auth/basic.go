// Package auth is the named auth-layer contract referenced by the HTTP
// transport boundary (internal/api): HTTP Basic credential verification
// against a single configured operator account, session JWT issuance, and
// Google ID token verification as an alternate login path. Grounded on
// internal/application/auth/password_service.go's bcrypt usage and
// internal/application/auth/gateway_provider.go's OIDC discovery/verifier
// shape, trimmed from the teacher's full multi-tenant user/role system down
// to the single-operator contract spec §6 describes.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a basic-auth username/password
// pair doesn't match the configured operator account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// BasicVerifier checks HTTP Basic credentials against SP_USERNAME and a
// bcrypt hash of SP_PASSWORD, computed once at construction so the hot path
// never re-hashes the configured password.
type BasicVerifier struct {
	username     string
	passwordHash []byte
}

// NewBasicVerifier hashes password once and binds it to username.
func NewBasicVerifier(username, password string) (*BasicVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash operator password: %w", err)
	}
	return &BasicVerifier{username: username, passwordHash: hash}, nil
}

// Verify returns nil if username/password match the configured operator
// account, ErrInvalidCredentials otherwise. The username comparison is
// constant-time to avoid leaking a timing signal alongside the bcrypt
// comparison bcrypt itself already does for the password.
func (v *BasicVerifier) Verify(username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) != 1 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
