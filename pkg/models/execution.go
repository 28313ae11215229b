package models

import "time"

// Execution represents a single workflow execution instance.
type Execution struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflow_id"`
	VersionNumber int             `json:"version_number"` // pinned at creation
	Status        ExecutionStatus `json:"status"`
	Input         map[string]any  `json:"input,omitempty"`
	Output        map[string]any  `json:"output,omitempty"`
	CurrentNodeID string          `json:"current_node_id,omitempty"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// ExecutionStatus enumerates §3's execution state machine.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
	ExecutionStatusWaiting   ExecutionStatus = "waiting"
)

// IsTerminal reports whether the execution will never transition again.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// ExecutionStep is one node *visit* within an execution: conditional
// re-entry creates a new row, not an update of an old one.
type ExecutionStep struct {
	ID          string            `json:"id"`
	ExecutionID string            `json:"execution_id"`
	NodeID      string            `json:"node_id"`
	Status      StepStatus        `json:"status"`
	Input       map[string]any    `json:"input,omitempty"`
	Output      map[string]any    `json:"output,omitempty"`
	Error       string            `json:"error,omitempty"`
	Attempt     int               `json:"attempt"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// StepStatus enumerates §3's step state machine.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// IsTerminal reports whether the step will never transition again; used by
// FinalizeStep to refuse overwriting an already-terminal step.
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusCompleted || s == StepStatusFailed || s == StepStatusSkipped
}
