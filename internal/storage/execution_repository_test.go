package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/pkg/models"
)

func seedExecution(t *testing.T, wfRepo *WorkflowRepository, execRepo *ExecutionRepository, workflowName string) *models.Execution {
	t.Helper()
	wf := seedWorkflow(t, wfRepo, workflowName)
	exec := &models.Execution{WorkflowID: wf.ID, VersionNumber: 1, Input: map[string]any{"order_id": "o-1"}}
	require.NoError(t, execRepo.Create(t.Context(), exec))
	return exec
}

func TestExecutionRepository_Create_DefaultsToPending(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "exec-pipeline")

	got, err := execRepo.Get(t.Context(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, got.Status)
	assert.Equal(t, "o-1", got.Input["order_id"])
}

func TestExecutionRepository_ClaimExecution_WinnerTransitionsToRunning(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "claim-pipeline")

	claimed, err := execRepo.ClaimExecution(t.Context(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, claimed.Status)
	assert.NotNil(t, claimed.StartedAt)
}

func TestExecutionRepository_ClaimExecution_LoserGetsAlreadyRunning(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "race-pipeline")

	_, err := execRepo.ClaimExecution(t.Context(), exec.ID)
	require.NoError(t, err)

	_, err = execRepo.ClaimExecution(t.Context(), exec.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyRunning)
}

func TestExecutionRepository_Finalize_RejectsNonTerminalStatus(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "finalize-guard")

	err := execRepo.Finalize(t.Context(), exec.ID, models.ExecutionStatusRunning, nil, "")
	assert.Error(t, err)
}

func TestExecutionRepository_Finalize_Completed(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "finalize-pipeline")

	require.NoError(t, execRepo.Finalize(t.Context(), exec.ID, models.ExecutionStatusCompleted, map[string]any{"ok": true}, ""))

	got, err := execRepo.Get(t.Context(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, true, got.Output["ok"])
}

func TestExecutionRepository_StepIdempotency(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "step-pipeline")

	step := &models.ExecutionStep{ExecutionID: exec.ID, NodeID: "n1", Attempt: 1}
	require.NoError(t, execRepo.CreateStep(t.Context(), step))

	found, err := execRepo.FindStep(t.Context(), exec.ID, "n1", 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.StepStatusPending, found.Status)

	missing, err := execRepo.FindStep(t.Context(), exec.ID, "n1", 2)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExecutionRepository_FinalizeStep_RefusesDoubleTerminal(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "finalize-step-pipeline")

	step := &models.ExecutionStep{ExecutionID: exec.ID, NodeID: "n1", Attempt: 1}
	require.NoError(t, execRepo.CreateStep(t.Context(), step))

	require.NoError(t, execRepo.FinalizeStep(t.Context(), step.ID, models.StepStatusCompleted, map[string]any{"x": 1}, ""))

	// A redelivered completion attempt is a no-op, not an error or overwrite.
	require.NoError(t, execRepo.FinalizeStep(t.Context(), step.ID, models.StepStatusFailed, nil, "stale redelivery"))

	steps, err := execRepo.ListSteps(t.Context(), exec.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, models.StepStatusCompleted, steps[0].Status)
}
