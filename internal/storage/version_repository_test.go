package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/pkg/models"
)

func seedWorkflow(t *testing.T, repo *WorkflowRepository, name string) *models.Workflow {
	t.Helper()
	wf := &models.Workflow{Name: name, Enabled: true}
	require.NoError(t, repo.Create(t.Context(), wf))
	return wf
}

func sampleSnapshot(wf *models.Workflow) *models.Workflow {
	triggerID, conditionID := "n1", "n2"
	return &models.Workflow{
		ID:      wf.ID,
		Name:    wf.Name,
		Enabled: true,
		Nodes: []*models.Node{
			{ID: triggerID, Name: "trigger", Type: models.NodeConfig{Kind: models.NodeKindTrigger}},
			{ID: conditionID, Name: "cond", Type: models.NodeConfig{Kind: models.NodeKindCondition}},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestVersionRepository_Create_AssignsIncrementingNumbers(t *testing.T) {
	db := setupTestDB(t)
	wfRepo := NewWorkflowRepository(db)
	verRepo := NewVersionRepository(db)

	wf := seedWorkflow(t, wfRepo, "versioned")
	v1 := &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "initial"}
	require.NoError(t, verRepo.Create(t.Context(), v1))
	assert.Equal(t, 1, v1.VersionNumber)

	v2 := &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "second"}
	require.NoError(t, verRepo.Create(t.Context(), v2))
	assert.Equal(t, 2, v2.VersionNumber)
}

func TestVersionRepository_Get_RoundTripsSnapshot(t *testing.T) {
	db := setupTestDB(t)
	wfRepo := NewWorkflowRepository(db)
	verRepo := NewVersionRepository(db)

	wf := seedWorkflow(t, wfRepo, "snapshot-roundtrip")
	snap := sampleSnapshot(wf)
	v := &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: snap, CommitMessage: "commit"}
	require.NoError(t, verRepo.Create(t.Context(), v))

	got, err := verRepo.Get(t.Context(), wf.ID, 1)
	require.NoError(t, err)
	require.Len(t, got.Snapshot.Nodes, 2)
	assert.Equal(t, models.NodeKindTrigger, got.Snapshot.Nodes[0].Type.Kind)
}

func TestVersionRepository_GetLatest(t *testing.T) {
	db := setupTestDB(t)
	wfRepo := NewWorkflowRepository(db)
	verRepo := NewVersionRepository(db)

	wf := seedWorkflow(t, wfRepo, "latest-test")
	require.NoError(t, verRepo.Create(t.Context(), &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "v1"}))
	require.NoError(t, verRepo.Create(t.Context(), &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "v2"}))

	latest, err := verRepo.GetLatest(t.Context(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.VersionNumber)
	assert.Equal(t, "v2", latest.CommitMessage)
}

func TestVersionRepository_List_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	wfRepo := NewWorkflowRepository(db)
	verRepo := NewVersionRepository(db)

	wf := seedWorkflow(t, wfRepo, "list-test")
	require.NoError(t, verRepo.Create(t.Context(), &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "v1"}))
	require.NoError(t, verRepo.Create(t.Context(), &models.WorkflowVersion{WorkflowID: wf.ID, Snapshot: sampleSnapshot(wf), CommitMessage: "v2"}))

	list, err := verRepo.List(t.Context(), wf.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].VersionNumber)
}
