package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/pkg/models"
)

func TestEventRepository_Append_AssignsIncrementingSequence(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	evRepo := NewEventRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "event-pipeline")

	e1 := &models.Event{ExecutionID: exec.ID, EventType: models.EventTypeExecutionStarted}
	require.NoError(t, evRepo.Append(t.Context(), e1))
	assert.Equal(t, int64(1), e1.Sequence)

	e2 := &models.Event{ExecutionID: exec.ID, EventType: models.EventTypeNodeStarted, Payload: map[string]interface{}{"node_id": "n1"}}
	require.NoError(t, evRepo.Append(t.Context(), e2))
	assert.Equal(t, int64(2), e2.Sequence)
}

func TestEventRepository_ListByExecution_ReplayOrder(t *testing.T) {
	db := setupTestDB(t)
	execRepo := NewExecutionRepository(db)
	evRepo := NewEventRepository(db)
	exec := seedExecution(t, NewWorkflowRepository(db), execRepo, "replay-pipeline")

	require.NoError(t, evRepo.Append(t.Context(), &models.Event{ExecutionID: exec.ID, EventType: models.EventTypeExecutionStarted}))
	require.NoError(t, evRepo.Append(t.Context(), &models.Event{ExecutionID: exec.ID, EventType: models.EventTypeNodeStarted, Payload: map[string]interface{}{"node_id": "n1"}}))
	require.NoError(t, evRepo.Append(t.Context(), &models.Event{ExecutionID: exec.ID, EventType: models.EventTypeNodeCompleted, Payload: map[string]interface{}{"node_id": "n1"}}))

	events, err := evRepo.ListByExecution(t.Context(), exec.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventTypeExecutionStarted, events[0].EventType)
	assert.Equal(t, "n1", events[2].NodeID())
}
