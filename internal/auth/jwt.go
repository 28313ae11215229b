package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any session token that fails signature,
// expiry, or claim-shape verification.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identifies the operator a session token was issued to.
type SessionClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// SessionIssuer issues and verifies HS256 session tokens, grounded on the
// teacher's jwt_service's NewWithClaims/SignedString and
// ParseWithClaims usage, trimmed to a single signing key and a single
// claim (no refresh-token pair, since the admin session surface here is a
// stub ahead of the full admin API).
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionIssuer builds a SessionIssuer signing with secret.
func NewSessionIssuer(secret []byte, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionIssuer{secret: secret, ttl: ttl}
}

// Issue mints a session token for subject (the operator username or the
// Google account email).
func (s *SessionIssuer) Issue(subject string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (s *SessionIssuer) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
