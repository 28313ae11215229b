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

// WorkflowRepository persists workflow identity rows. The graph itself is
// never stored here — see VersionRepository.
type WorkflowRepository struct {
	db *bun.DB
}

// NewWorkflowRepository builds a WorkflowRepository.
func NewWorkflowRepository(db *bun.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create inserts a new workflow row, assigning a UUID if ID is empty.
func (r *WorkflowRepository) Create(ctx context.Context, wf *models.Workflow) error {
	if wf.ID == "" {
		wf.ID = models.NewID()
	}
	now := time.Now().UTC()
	wf.CreatedAt, wf.UpdatedAt = now, now

	row := &storagemodels.WorkflowRow{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		Enabled:     wf.Enabled,
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

// Get fetches a workflow's identity row by ID.
func (r *WorkflowRepository) Get(ctx context.Context, id string) (*models.Workflow, error) {
	row := new(storagemodels.WorkflowRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return rowToWorkflow(row), nil
}

// List returns every workflow's identity row, most recently updated first.
func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	var rows []*storagemodels.WorkflowRow
	if err := r.db.NewSelect().Model(&rows).OrderExpr("updated_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	out := make([]*models.Workflow, len(rows))
	for i, row := range rows {
		out[i] = rowToWorkflow(row)
	}
	return out, nil
}

// SetEnabled flips a workflow's enablement flag; a disabled workflow's
// trigger rejects new executions per §3's ErrWorkflowDisabled.
func (r *WorkflowRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := r.db.NewUpdate().
		Model((*storagemodels.WorkflowRow)(nil)).
		Set("enabled = ?", enabled).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set workflow enabled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set workflow enabled: %w", err)
	}
	if n == 0 {
		return models.ErrWorkflowNotFound
	}
	return nil
}

// Rename updates a workflow's name/description metadata.
func (r *WorkflowRepository) Rename(ctx context.Context, id, name, description string) error {
	res, err := r.db.NewUpdate().
		Model((*storagemodels.WorkflowRow)(nil)).
		Set("name = ?", name).
		Set("description = ?", description).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rename workflow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename workflow: %w", err)
	}
	if n == 0 {
		return models.ErrWorkflowNotFound
	}
	return nil
}

func rowToWorkflow(row *storagemodels.WorkflowRow) *models.Workflow {
	return &models.Workflow{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Enabled:     row.Enabled,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
