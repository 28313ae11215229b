package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	storagemodels "github.com/openobserve/swisspipe/internal/storage/models"
	"github.com/openobserve/swisspipe/internal/secrets"
	"github.com/openobserve/swisspipe/pkg/models"
)

// VariableRepository persists named Variable values, sealing and opening
// secrets through the given Sealer so ciphertext never leaks into callers
// that only need to list or rename a variable.
type VariableRepository struct {
	db     *bun.DB
	sealer *secrets.Sealer
}

// NewVariableRepository builds a VariableRepository.
func NewVariableRepository(db *bun.DB, sealer *secrets.Sealer) *VariableRepository {
	return &VariableRepository{db: db, sealer: sealer}
}

// Create inserts a new variable, sealing its value first if it is a secret.
func (r *VariableRepository) Create(ctx context.Context, v *models.Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = models.NewID()
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	sealed := *v
	if err := r.sealer.Seal(&sealed); err != nil {
		return err
	}

	row := &storagemodels.VariableRow{
		ID:          sealed.ID,
		Name:        sealed.Name,
		ValueType:   string(sealed.ValueType),
		Value:       sealed.Value,
		Description: sealed.Description,
		CreatedAt:   sealed.CreatedAt,
		UpdatedAt:   sealed.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return models.ErrVariableExists
		}
		return fmt.Errorf("create variable: %w", err)
	}
	return nil
}

// Get fetches a variable by name with its value decrypted (if a secret) —
// this is the path the template engine's {{ env.NAME }} resolution uses.
func (r *VariableRepository) Get(ctx context.Context, name string) (*models.Variable, error) {
	row := new(storagemodels.VariableRow)
	err := r.db.NewSelect().Model(row).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrVariableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get variable: %w", err)
	}
	v := rowToVariable(row)
	plaintext, err := r.sealer.Open(v)
	if err != nil {
		return nil, err
	}
	v.Value = plaintext
	return v, nil
}

// List returns every variable with DisplayValue-safe (still-sealed) values;
// callers that render a list must call v.DisplayValue(), never v.Value.
func (r *VariableRepository) List(ctx context.Context) ([]*models.Variable, error) {
	var rows []*storagemodels.VariableRow
	if err := r.db.NewSelect().Model(&rows).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	out := make([]*models.Variable, len(rows))
	for i, row := range rows {
		out[i] = rowToVariable(row)
	}
	return out, nil
}

// Snapshot returns every variable's name mapped to its decrypted value —
// the "load the variable snapshot once" step the execution engine performs
// at the start of every job, per spec §4.6.
func (r *VariableRepository) Snapshot(ctx context.Context) (map[string]any, error) {
	vars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(vars))
	for _, v := range vars {
		plaintext, err := r.sealer.Open(v)
		if err != nil {
			return nil, err
		}
		out[v.Name] = plaintext
	}
	return out, nil
}

// Update replaces a variable's value and description, re-sealing secrets.
func (r *VariableRepository) Update(ctx context.Context, v *models.Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	sealed := *v
	if err := r.sealer.Seal(&sealed); err != nil {
		return err
	}
	res, err := r.db.NewUpdate().
		Model((*storagemodels.VariableRow)(nil)).
		Set("value_type = ?", string(sealed.ValueType)).
		Set("value = ?", sealed.Value).
		Set("description = ?", sealed.Description).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", sealed.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update variable: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update variable: %w", err)
	}
	if n == 0 {
		return models.ErrVariableNotFound
	}
	return nil
}

// Delete removes a variable by ID.
func (r *VariableRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*storagemodels.VariableRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete variable: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete variable: %w", err)
	}
	if n == 0 {
		return models.ErrVariableNotFound
	}
	return nil
}

func rowToVariable(row *storagemodels.VariableRow) *models.Variable {
	return &models.Variable{
		ID:          row.ID,
		Name:        row.Name,
		ValueType:   models.ValueType(row.ValueType),
		Value:       row.Value,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
