package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openobserve/swisspipe/internal/versions"
	"github.com/openobserve/swisspipe/pkg/models"
)

// VersionHandler exposes the commit/read/list surface of the version
// service (component I) — every save is an immutable commit, never an
// in-place update.
type VersionHandler struct {
	service *versions.Service
}

// NewVersionHandler builds a VersionHandler.
func NewVersionHandler(service *versions.Service) *VersionHandler {
	return &VersionHandler{service: service}
}

type commitRequest struct {
	Snapshot      *models.Workflow `json:"snapshot" binding:"required"`
	CommitMessage string           `json:"commit_message" binding:"required,min=1,max=100"`
	Description   string           `json:"description"`
	Author        string           `json:"author" binding:"required"`
}

// HandleCommit handles POST /workflows/:workflow_id/versions.
func (h *VersionHandler) HandleCommit(c *gin.Context) {
	var req commitRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.service.Save(c.Request.Context(), c.Param("workflow_id"), req.Snapshot, req.CommitMessage, req.Description, req.Author)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// HandleCommitYAML handles POST /workflows/:workflow_id/versions/yaml — the
// dual-format import path (supplemented feature): the body is a raw YAML
// workflow definition rather than the JSON commitRequest envelope, with
// commit_message/author carried as query parameters since there is no JSON
// envelope left to carry them in.
func (h *VersionHandler) HandleCommitYAML(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	snapshot, err := decodeWorkflowYAML(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commitMessage := c.Query("commit_message")
	author := c.Query("author")
	if commitMessage == "" || author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commit_message and author query parameters are required"})
		return
	}

	v, err := h.service.Save(c.Request.Context(), c.Param("workflow_id"), snapshot, commitMessage, c.Query("description"), author)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// HandleGet handles GET /workflows/:workflow_id/versions/:version_number.
func (h *VersionHandler) HandleGet(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("version_number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version_number must be an integer"})
		return
	}
	v, err := h.service.Get(c.Request.Context(), c.Param("workflow_id"), n)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// HandleLatest handles GET /workflows/:workflow_id/versions/latest.
func (h *VersionHandler) HandleLatest(c *gin.Context) {
	v, err := h.service.Latest(c.Request.Context(), c.Param("workflow_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// HandleList handles GET /workflows/:workflow_id/versions.
func (h *VersionHandler) HandleList(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Param("workflow_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}
