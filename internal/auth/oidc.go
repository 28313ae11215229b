package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleVerifier verifies Google-issued ID tokens as an alternate login
// path to HTTP Basic, grounded on
// internal/application/auth/gateway_provider.go's oidc.NewProvider /
// Verifier discovery shape, narrowed to Google's fixed issuer (the teacher
// discovers an arbitrary configurable gateway issuer; SwissPipe's AuthConfig
// only carries Google client credentials).
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier performs OIDC discovery against accounts.google.com and
// binds a verifier scoped to clientID.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}
	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// GoogleClaims is the subset of a Google ID token's claims the login path
// needs.
type GoogleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verify validates rawIDToken's signature, issuer, audience, and expiry,
// then decodes its email claim.
func (v *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify google id token: %w", err)
	}
	var claims GoogleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode google id token claims: %w", err)
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("google account email is not verified")
	}
	return &claims, nil
}
