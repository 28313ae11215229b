package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openobserve/swisspipe/internal/auth"
)

// SessionVerifier is the subset of *internal/auth.SessionIssuer the
// transport boundary needs to guard a route group.
type SessionVerifier interface {
	Verify(tokenString string) (*auth.SessionClaims, error)
}

// RequireSession rejects any request without a valid `Authorization:
// Bearer <token>` session token, minted by HandleLogin. Applied to the
// version-commit routes — the one mutating surface this thin transport
// exposes ahead of the full admin API (spec §6).
func RequireSession(sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer session token"})
			c.Abort()
			return
		}
		claims, err := sessions.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			c.Abort()
			return
		}
		c.Set("session_subject", claims.Subject)
		c.Next()
	}
}
