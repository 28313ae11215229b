package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/openobserve/swisspipe/internal/logging"
	"github.com/openobserve/swisspipe/internal/storage"
)

// Handlers bundles every route group's handler.
type Handlers struct {
	Webhook *WebhookHandler
	HIL     *HILHandler
	Version *VersionHandler
	Auth    *AuthHandler // nil disables the /auth/login route and session guard
}

// NewRouter builds the gin engine: recovery/logging middleware, health
// checks, and the ingestion/HIL/version routes, grounded on
// cmd/server/main.go's route-group layout. When h.Auth and sessions are
// both non-nil, the version-commit routes require a Bearer session token
// minted by POST /auth/login; otherwise they're left open, matching
// SP_USERNAME/SP_PASSWORD being optional in internal/config.
func NewRouter(log *logging.Logger, db *bun.DB, h Handlers, sessions SessionVerifier) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := storage.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", func(c *gin.Context) {
		stats := storage.Stats(db)
		c.JSON(http.StatusOK, gin.H{"database": gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}})
	})

	router.Any("/hooks/:workflow_id", h.Webhook.HandleTrigger)

	router.POST("/executions/:execution_id/nodes/:node_id/resolve", h.HIL.HandleResolve)

	if h.Auth != nil {
		router.POST("/auth/login", h.Auth.HandleLogin)
	}

	versionsGroup := router.Group("/workflows/:workflow_id/versions")
	if h.Auth != nil && sessions != nil {
		versionsGroup.Use(RequireSession(sessions))
	}
	{
		versionsGroup.POST("", h.Version.HandleCommit)
		versionsGroup.POST("/yaml", h.Version.HandleCommitYAML)
		versionsGroup.GET("", h.Version.HandleList)
		versionsGroup.GET("/latest", h.Version.HandleLatest)
		versionsGroup.GET("/:version_number", h.Version.HandleGet)
	}

	return router
}
