// Package api is the HTTP transport boundary: a thin gin-gonic/gin router
// exercising the ingestion admission path (component J), the HIL decision
// callback, and the version service, grounded on
// internal/infrastructure/api/rest's recovery/logging middleware and route
// grouping idiom. The admin API's full CRUD surface is out of scope (spec
// §6) — this package wires only what the engine needs to be reachable from
// outside the process.
package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openobserve/swisspipe/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// Recovery turns a panicking handler into a 500 instead of a crashed
// process, logging the stack the way the teacher's RecoveryMiddleware does.
func Recovery(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"request_id", c.GetString(requestIDHeader),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"error", r,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// RequestLogger assigns a request ID and logs method/path/duration/status
// for every request.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDHeader, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		log.Info("request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
