package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openobserve/swisspipe/internal/auth"
)

// CredentialVerifier is the subset of *internal/auth.BasicVerifier the
// login handler needs.
type CredentialVerifier interface {
	Verify(username, password string) error
}

// SessionMinter is the subset of *internal/auth.SessionIssuer the login
// handler needs.
type SessionMinter interface {
	Issue(subject string) (string, error)
}

// AuthHandler exchanges either operator Basic credentials or a Google ID
// token for a session JWT, the named auth-layer contract spec §6 describes
// ahead of a full admin API.
type AuthHandler struct {
	basic   CredentialVerifier
	google  *auth.GoogleVerifier
	session SessionMinter
}

// NewAuthHandler builds an AuthHandler. google may be nil when Google login
// isn't configured (SP_GOOGLE_OAUTH_CLIENT_ID unset).
func NewAuthHandler(basic CredentialVerifier, google *auth.GoogleVerifier, session SessionMinter) *AuthHandler {
	return &AuthHandler{basic: basic, google: google, session: session}
}

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	GoogleIDToken string `json:"google_id_token"`
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	var subject string
	switch {
	case req.GoogleIDToken != "":
		if h.google == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google login is not configured"})
			return
		}
		claims, err := h.google.Verify(c.Request.Context(), req.GoogleIDToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid google id token"})
			return
		}
		subject = claims.Email
	default:
		if h.basic == nil || h.basic.Verify(req.Username, req.Password) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		subject = req.Username
	}

	token, err := h.session.Issue(subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
