package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/pkg/models"
)

func TestWorkflowRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepository(db)

	wf := &models.Workflow{Name: "order-pipeline", Description: "handles orders", Enabled: true}
	require.NoError(t, repo.Create(t.Context(), wf))
	assert.NotEmpty(t, wf.ID)

	got, err := repo.Get(t.Context(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "order-pipeline", got.Name)
	assert.True(t, got.Enabled)
}

func TestWorkflowRepository_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepository(db)

	_, err := repo.Get(t.Context(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)
}

func TestWorkflowRepository_SetEnabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepository(db)

	wf := &models.Workflow{Name: "toggle-me", Enabled: true}
	require.NoError(t, repo.Create(t.Context(), wf))

	require.NoError(t, repo.SetEnabled(t.Context(), wf.ID, false))
	got, err := repo.Get(t.Context(), wf.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

func TestWorkflowRepository_List_OrderedByUpdatedDesc(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkflowRepository(db)

	first := &models.Workflow{Name: "first", Enabled: true}
	require.NoError(t, repo.Create(t.Context(), first))
	time.Sleep(10 * time.Millisecond)
	second := &models.Workflow{Name: "second", Enabled: true}
	require.NoError(t, repo.Create(t.Context(), second))

	list, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
}
