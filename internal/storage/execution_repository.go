package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	storagemodels "github.com/openobserve/swisspipe/internal/storage/models"
	"github.com/openobserve/swisspipe/pkg/models"
)

// ExecutionRepository persists Execution rows and their ExecutionStep
// children.
type ExecutionRepository struct {
	db *bun.DB
}

// NewExecutionRepository builds an ExecutionRepository.
func NewExecutionRepository(db *bun.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create inserts a new execution in ExecutionStatusPending.
func (r *ExecutionRepository) Create(ctx context.Context, e *models.Execution) error {
	if e.ID == "" {
		e.ID = models.NewID()
	}
	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = models.ExecutionStatusPending
	}

	row := executionToRow(e)
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	return nil
}

// Get fetches an execution by ID.
func (r *ExecutionRepository) Get(ctx context.Context, id string) (*models.Execution, error) {
	row := new(storagemodels.ExecutionRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrExecutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}
	return rowToExecution(row), nil
}

// ListByWorkflow returns executions of a workflow, newest first.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit, offset int) ([]*models.Execution, error) {
	var rows []*storagemodels.ExecutionRow
	q := r.db.NewSelect().Model(&rows).Where("workflow_id = ?", workflowID).OrderExpr("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	out := make([]*models.Execution, len(rows))
	for i, row := range rows {
		out[i] = rowToExecution(row)
	}
	return out, nil
}

// ClaimExecution atomically transitions an execution from Pending or
// Waiting into Running, returning models.ErrAlreadyRunning if another
// worker won the race — this is what makes at-least-once job delivery safe
// to run with more than one worker goroutine.
func (r *ExecutionRepository) ClaimExecution(ctx context.Context, id string) (*models.Execution, error) {
	res, err := r.db.NewUpdate().
		Model((*storagemodels.ExecutionRow)(nil)).
		Set("status = ?", models.ExecutionStatusRunning).
		Set("started_at = COALESCE(started_at, ?)", time.Now().UTC()).
		Where("id = ?", id).
		Where("status IN (?)", bun.In([]string{string(models.ExecutionStatusPending), string(models.ExecutionStatusWaiting)})).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim execution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim execution: %w", err)
	}

	row := new(storagemodels.ExecutionRow)
	selErr := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(selErr, sql.ErrNoRows) {
		return nil, models.ErrExecutionNotFound
	}
	if selErr != nil {
		return nil, fmt.Errorf("claim execution: %w", selErr)
	}
	if n == 0 {
		return nil, models.ErrAlreadyRunning
	}
	return rowToExecution(row), nil
}

// UpdateProgress records the node an execution is currently suspended at,
// transitioning it to Waiting.
func (r *ExecutionRepository) UpdateProgress(ctx context.Context, id, currentNodeID string) error {
	_, err := r.db.NewUpdate().
		Model((*storagemodels.ExecutionRow)(nil)).
		Set("status = ?", models.ExecutionStatusWaiting).
		Set("current_node_id = ?", currentNodeID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update execution progress: %w", err)
	}
	return nil
}

// Finalize transitions an execution to a terminal status with its output
// or error, stamping completed_at.
func (r *ExecutionRepository) Finalize(ctx context.Context, id string, status models.ExecutionStatus, output map[string]any, execErr string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finalize execution: %s is not a terminal status", status)
	}
	_, err := r.db.NewUpdate().
		Model((*storagemodels.ExecutionRow)(nil)).
		Set("status = ?", status).
		Set("output = ?", storagemodels.JSONBMap(output)).
		Set("error = ?", execErr).
		Set("completed_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("finalize execution: %w", err)
	}
	return nil
}

// CreateStep inserts a new ExecutionStep row for a node attempt.
func (r *ExecutionRepository) CreateStep(ctx context.Context, s *models.ExecutionStep) error {
	if s.ID == "" {
		s.ID = models.NewID()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	if s.Status == "" {
		s.Status = models.StepStatusPending
	}

	row := &storagemodels.ExecutionStepRow{
		ID:          s.ID,
		ExecutionID: s.ExecutionID,
		NodeID:      s.NodeID,
		Status:      string(s.Status),
		Input:       storagemodels.JSONBMap(s.Input),
		Output:      storagemodels.JSONBMap(s.Output),
		Error:       s.Error,
		Attempt:     s.Attempt,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		CreatedAt:   s.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create execution step: %w", err)
	}
	return nil
}

// FindStep fetches a specific node attempt by (execution_id, node_id,
// attempt). The engine walks it up from attempt 1 to find a node's latest
// attempt number; it is not used to skip re-running a handler whose earlier
// attempt already finished.
func (r *ExecutionRepository) FindStep(ctx context.Context, executionID, nodeID string, attempt int) (*models.ExecutionStep, error) {
	row := new(storagemodels.ExecutionStepRow)
	err := r.db.NewSelect().
		Model(row).
		Where("execution_id = ? AND node_id = ? AND attempt = ?", executionID, nodeID, attempt).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find execution step: %w", err)
	}
	return rowToStep(row), nil
}

// ListSteps returns every attempt recorded for an execution, oldest first.
func (r *ExecutionRepository) ListSteps(ctx context.Context, executionID string) ([]*models.ExecutionStep, error) {
	var rows []*storagemodels.ExecutionStepRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("execution_id = ?", executionID).
		OrderExpr("started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list execution steps: %w", err)
	}
	out := make([]*models.ExecutionStep, len(rows))
	for i, row := range rows {
		out[i] = rowToStep(row)
	}
	return out, nil
}

// FinalizeStep transitions a step to a terminal status with its output or
// error. It refuses to overwrite a step that is already terminal, so a
// redelivered job that races with a completed attempt is a no-op rather
// than a double-apply.
func (r *ExecutionRepository) FinalizeStep(ctx context.Context, stepID string, status models.StepStatus, output map[string]any, stepErr string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finalize step: %s is not a terminal status", status)
	}
	res, err := r.db.NewUpdate().
		Model((*storagemodels.ExecutionStepRow)(nil)).
		Set("status = ?", string(status)).
		Set("output = ?", storagemodels.JSONBMap(output)).
		Set("error = ?", stepErr).
		Set("completed_at = ?", time.Now().UTC()).
		Where("id = ?", stepID).
		Where("status NOT IN (?)", bun.In([]string{
			string(models.StepStatusCompleted), string(models.StepStatusFailed), string(models.StepStatusSkipped),
		})).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("finalize step: %w", err)
	}
	_, err = res.RowsAffected()
	return err
}

func executionToRow(e *models.Execution) *storagemodels.ExecutionRow {
	return &storagemodels.ExecutionRow{
		ID:            e.ID,
		WorkflowID:    e.WorkflowID,
		VersionNumber: e.VersionNumber,
		Status:        string(e.Status),
		Input:         storagemodels.JSONBMap(e.Input),
		Output:        storagemodels.JSONBMap(e.Output),
		CurrentNodeID: e.CurrentNodeID,
		Error:         e.Error,
		CreatedAt:     e.CreatedAt,
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
	}
}

func rowToExecution(row *storagemodels.ExecutionRow) *models.Execution {
	return &models.Execution{
		ID:            row.ID,
		WorkflowID:    row.WorkflowID,
		VersionNumber: row.VersionNumber,
		Status:        models.ExecutionStatus(row.Status),
		Input:         map[string]any(row.Input),
		Output:        map[string]any(row.Output),
		CurrentNodeID: row.CurrentNodeID,
		Error:         row.Error,
		CreatedAt:     row.CreatedAt,
		StartedAt:     row.StartedAt,
		CompletedAt:   row.CompletedAt,
	}
}

func rowToStep(row *storagemodels.ExecutionStepRow) *models.ExecutionStep {
	return &models.ExecutionStep{
		ID:          row.ID,
		ExecutionID: row.ExecutionID,
		NodeID:      row.NodeID,
		Status:      models.StepStatus(row.Status),
		Input:       map[string]any(row.Input),
		Output:      map[string]any(row.Output),
		Error:       row.Error,
		Attempt:     row.Attempt,
		StartedAt:   row.StartedAt,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
	}
}
