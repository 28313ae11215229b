package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openobserve/swisspipe/internal/ingestion"
	"github.com/openobserve/swisspipe/pkg/models"
)

// WebhookHandler admits inbound HTTP triggers into the execution pipeline,
// grounded on internal/infrastructure/api/rest/handlers_webhook.go's
// header-extraction and status-mapping shape.
type WebhookHandler struct {
	ingestion *ingestion.Ingestion
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(ing *ingestion.Ingestion) *WebhookHandler {
	return &WebhookHandler{ingestion: ing}
}

// HandleTrigger handles ANY /hooks/:workflow_id.
func (h *WebhookHandler) HandleTrigger(c *gin.Context) {
	workflowID := c.Param("workflow_id")

	var body map[string]any
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	executionID, err := h.ingestion.Trigger(c.Request.Context(), workflowID, c.Request.Method, headers, body)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"execution_id": executionID})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWorkflowDisabled):
		return http.StatusForbidden
	case errors.Is(err, ingestion.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
