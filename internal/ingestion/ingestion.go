// Package ingestion is the admission path (component J) described in spec
// §4.10: turn an inbound webhook delivery into a pending Execution plus a
// Start job, after checking the target workflow is enabled and the method
// is allowed. Grounded on
// internal/infrastructure/api/rest/handlers_webhook.go's general shape
// (load workflow, validate, construct event, enqueue) — the HTTP transport
// itself stays out of scope, so Trigger takes already-parsed method,
// headers, and body rather than a *gin.Context or *http.Request.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// ErrMethodNotAllowed is returned when the inbound HTTP method isn't in
// the Trigger node's allow-list.
var ErrMethodNotAllowed = errors.New("method not allowed for this trigger")

// sensitiveHeaders is stripped from every inbound event before it reaches
// a workflow, per spec §6 — verbatim list.
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-csrf-token":        {},
	"x-xsrf-token":        {},
	"x-forwarded-for":     {},
	"x-real-ip":           {},
}

// WorkflowLoader resolves the current workflow definition. Implemented by
// *internal/cache.WorkflowCache.
type WorkflowLoader interface {
	GetOrLoad(ctx context.Context, workflowID string) (*models.WorkflowVersion, error)
}

// ExecutionStore is the subset of internal/storage.ExecutionRepository the
// ingestion path needs.
type ExecutionStore interface {
	Create(ctx context.Context, e *models.Execution) error
}

// Enqueuer submits the new execution's Start job. Implemented by
// *internal/jobs.Pool.
type Enqueuer interface {
	Enqueue(job models.Job) error
}

// IDGenerator returns request IDs; overridable in tests.
type IDGenerator func() string

// Ingestion admits inbound triggers into the execution pipeline.
type Ingestion struct {
	Workflows  WorkflowLoader
	Executions ExecutionStore
	Queue      Enqueuer
	NewID      IDGenerator
	Now        func() time.Time
}

// New builds an Ingestion with production defaults for NewID/Now.
func New(workflows WorkflowLoader, executions ExecutionStore, queue Enqueuer) *Ingestion {
	return &Ingestion{
		Workflows:  workflows,
		Executions: executions,
		Queue:      queue,
		NewID:      models.NewID,
		Now:        time.Now,
	}
}

// Trigger runs the spec §4.10 algorithm: load the workflow, validate the
// method against its Trigger node, build a stripped event, persist a
// pending Execution, enqueue its Start job, and return the execution ID.
func (i *Ingestion) Trigger(ctx context.Context, workflowID, httpMethod string, headers map[string]string, body map[string]any) (string, error) {
	version, err := i.Workflows.GetOrLoad(ctx, workflowID)
	if err != nil {
		return "", err
	}
	workflow := version.Snapshot
	if !workflow.Enabled {
		return "", models.ErrWorkflowDisabled
	}

	triggerNode, err := workflow.TriggerNode()
	if err != nil {
		return "", err
	}
	if triggerNode.Type.Trigger == nil || !methodAllowed(triggerNode.Type.Trigger.AllowedMethods, httpMethod) {
		return "", ErrMethodNotAllowed
	}

	event := map[string]any{
		"method":  httpMethod,
		"headers": stripSensitiveHeaders(headers),
		"data":    body,
	}
	return i.admit(ctx, workflowID, version, event)
}

// AdmitScheduled synthesizes an ingestion event for a Trigger node's
// optional cron_schedule tick (a supplemented feature — component H's
// CronScheduler calls this once per fire, bypassing the HTTP method
// allow-list entirely since a cron tick has no inbound method to check).
func (i *Ingestion) AdmitScheduled(ctx context.Context, workflowID string) error {
	version, err := i.Workflows.GetOrLoad(ctx, workflowID)
	if err != nil {
		return err
	}
	if !version.Snapshot.Enabled {
		return models.ErrWorkflowDisabled
	}
	event := map[string]any{"method": "CRON", "headers": map[string]string{}, "data": map[string]any{}}
	_, err = i.admit(ctx, workflowID, version, event)
	return err
}

func (i *Ingestion) admit(ctx context.Context, workflowID string, version *models.WorkflowVersion, event map[string]any) (string, error) {
	now := i.Now().UTC()
	event["metadata"] = map[string]any{
		"request_id":  i.NewID(),
		"received_at": now.Format(time.RFC3339Nano),
	}

	exec := &models.Execution{
		ID:            i.NewID(),
		WorkflowID:    workflowID,
		VersionNumber: version.VersionNumber,
		Status:        models.ExecutionStatusPending,
		Input:         event,
	}
	if err := i.Executions.Create(ctx, exec); err != nil {
		return "", fmt.Errorf("create execution: %w", err)
	}

	if err := i.Queue.Enqueue(models.Job{
		ExecutionID: exec.ID,
		ResumeToken: models.StartToken(),
		EnqueuedAt:  now,
		Attempt:     1,
	}); err != nil {
		return "", fmt.Errorf("enqueue start job: %w", err)
	}

	return exec.ID, nil
}

func methodAllowed(allowed []string, method string) bool {
	for _, m := range allowed {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func stripSensitiveHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, sensitive := sensitiveHeaders[strings.ToLower(k)]; sensitive {
			continue
		}
		out[k] = v
	}
	return out
}
