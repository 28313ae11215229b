package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resolver is the subset of *internal/schedulers.HILScheduler a decision
// callback needs.
type Resolver interface {
	Resolve(executionID, nodeID string, decision map[string]any) error
}

// HILHandler accepts a human's approve/deny decision for a suspended
// HumanInLoop node.
type HILHandler struct {
	resolver Resolver
}

// NewHILHandler builds a HILHandler.
func NewHILHandler(resolver Resolver) *HILHandler {
	return &HILHandler{resolver: resolver}
}

// HandleResolve handles POST /executions/:execution_id/nodes/:node_id/resolve.
func (h *HILHandler) HandleResolve(c *gin.Context) {
	var decision map[string]any
	if err := c.ShouldBindJSON(&decision); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	executionID := c.Param("execution_id")
	nodeID := c.Param("node_id")
	if err := h.resolver.Resolve(executionID, nodeID, decision); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "resumed"})
}
