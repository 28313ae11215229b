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

// VersionRepository persists immutable WorkflowVersion snapshots. Versions
// are never updated in place — a new commit is always a new row, keyed by
// (workflow_id, version_number) per the spec's cache key.
type VersionRepository struct {
	db *bun.DB
}

// NewVersionRepository builds a VersionRepository.
func NewVersionRepository(db *bun.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create inserts the next version for a workflow inside a transaction,
// computing version_number as max(existing)+1 so concurrent commits never
// silently clobber each other (a unique index on (workflow_id,
// version_number) turns a lost race into models.ErrVersionConflict).
func (r *VersionRepository) Create(ctx context.Context, v *models.WorkflowVersion) error {
	if v.ID == "" {
		v.ID = models.NewID()
	}
	v.CreatedAt = time.Now().UTC()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var maxVersion int
		err := tx.NewSelect().
			Model((*storagemodels.WorkflowVersionRow)(nil)).
			ColumnExpr("COALESCE(MAX(version_number), 0)").
			Where("workflow_id = ?", v.WorkflowID).
			Scan(ctx, &maxVersion)
		if err != nil {
			return fmt.Errorf("compute next version: %w", err)
		}
		v.VersionNumber = maxVersion + 1

		row := &storagemodels.WorkflowVersionRow{
			ID:            v.ID,
			WorkflowID:    v.WorkflowID,
			VersionNumber: v.VersionNumber,
			Snapshot:      storagemodels.WorkflowSnapshot(*v.Snapshot),
			CommitMessage: v.CommitMessage,
			Description:   v.Description,
			Author:        v.Author,
			CreatedAt:     v.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return models.ErrVersionConflict
			}
			return fmt.Errorf("create version: %w", err)
		}
		return nil
	})
}

// Get fetches a single version by (workflow_id, version_number) — the exact
// lookup the workflow cache misses on.
func (r *VersionRepository) Get(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error) {
	row := new(storagemodels.WorkflowVersionRow)
	err := r.db.NewSelect().
		Model(row).
		Where("workflow_id = ? AND version_number = ?", workflowID, versionNumber).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return rowToVersion(row), nil
}

// GetLatest fetches the highest version_number for a workflow.
func (r *VersionRepository) GetLatest(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	row := new(storagemodels.WorkflowVersionRow)
	err := r.db.NewSelect().
		Model(row).
		Where("workflow_id = ?", workflowID).
		OrderExpr("version_number DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	return rowToVersion(row), nil
}

// List returns every version of a workflow, newest first.
func (r *VersionRepository) List(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error) {
	var rows []*storagemodels.WorkflowVersionRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("workflow_id = ?", workflowID).
		OrderExpr("version_number DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	out := make([]*models.WorkflowVersion, len(rows))
	for i, row := range rows {
		out[i] = rowToVersion(row)
	}
	return out, nil
}

func rowToVersion(row *storagemodels.WorkflowVersionRow) *models.WorkflowVersion {
	snapshot := models.Workflow(row.Snapshot)
	return &models.WorkflowVersion{
		ID:            row.ID,
		WorkflowID:    row.WorkflowID,
		VersionNumber: row.VersionNumber,
		Snapshot:      &snapshot,
		CommitMessage: row.CommitMessage,
		Description:   row.Description,
		Author:        row.Author,
		CreatedAt:     row.CreatedAt,
	}
}
