package storage

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/openobserve/swisspipe/pkg/models"
)

// newBunDBWithMock wires a bun.DB to a go-sqlmock connection, grounded on
// internal/infrastructure/api/grpc/interceptors_test.go's newBunDBWithMock —
// used here instead of the testcontainers-backed setupTestDB for repository
// behavior that doesn't need a real query planner (not-found mapping,
// generated SQL shape).
func newBunDBWithMock(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return bun.NewDB(sqlDB, pgdialect.New()), mock
}

func TestWorkflowRepository_Get_NotFound_SQLMock(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewWorkflowRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "workflows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "enabled", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), "missing-id")
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepository_Get_Found_SQLMock(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewWorkflowRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM "workflows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "enabled", "created_at", "updated_at"}).
			AddRow("wf-1", "billing sync", "", true, now, now))

	wf, err := repo.Get(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", wf.ID)
	assert.Equal(t, "billing sync", wf.Name)
	assert.True(t, wf.Enabled)
	require.NoError(t, mock.ExpectationsWereMet())
}
