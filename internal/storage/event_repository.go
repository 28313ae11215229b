package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	storagemodels "github.com/openobserve/swisspipe/internal/storage/models"
	"github.com/openobserve/swisspipe/pkg/models"
)

// EventRepository appends to and reads an execution's event log. Rows are
// never updated or deleted: Sequence gives callers a stable replay order.
type EventRepository struct {
	db *bun.DB
}

// NewEventRepository builds an EventRepository.
func NewEventRepository(db *bun.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts the next event for an execution, computing Sequence as
// max(existing)+1 within a transaction; a concurrent append that computes
// the same Sequence fails on the (execution_id, sequence) unique constraint.
func (r *EventRepository) Append(ctx context.Context, e *models.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = models.NewID()
	}
	e.CreatedAt = time.Now().UTC()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var maxSeq int64
		err := tx.NewSelect().
			Model((*storagemodels.EventRow)(nil)).
			ColumnExpr("COALESCE(MAX(sequence), 0)").
			Where("execution_id = ?", e.ExecutionID).
			Scan(ctx, &maxSeq)
		if err != nil {
			return fmt.Errorf("compute next sequence: %w", err)
		}
		e.Sequence = maxSeq + 1

		row := &storagemodels.EventRow{
			ID:          e.ID,
			ExecutionID: e.ExecutionID,
			EventType:   e.EventType,
			Sequence:    e.Sequence,
			Payload:     storagemodels.JSONBMap(e.Payload),
			CreatedAt:   e.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		return nil
	})
}

// ListByExecution returns an execution's full event log in replay order.
func (r *EventRepository) ListByExecution(ctx context.Context, executionID string) ([]*models.Event, error) {
	var rows []*storagemodels.EventRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("execution_id = ?", executionID).
		OrderExpr("sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]*models.Event, len(rows))
	for i, row := range rows {
		out[i] = &models.Event{
			ID:          row.ID,
			ExecutionID: row.ExecutionID,
			EventType:   row.EventType,
			Sequence:    row.Sequence,
			Payload:     map[string]interface{}(row.Payload),
			CreatedAt:   row.CreatedAt,
		}
	}
	return out, nil
}
