package models

import "time"

// Event is an immutable entry in an execution's event log, used for
// observability and for replaying what happened to a given execution
// independent of the (mutable) ExecutionStep rows.
type Event struct {
	ID          string                 `json:"id"`
	ExecutionID string                 `json:"execution_id"`
	EventType   string                 `json:"event_type"`
	Sequence    int64                  `json:"sequence"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Event type constants (dot notation for hierarchical categorization).
const (
	EventTypeExecutionStarted   = "execution.started"
	EventTypeExecutionCompleted = "execution.completed"
	EventTypeExecutionFailed    = "execution.failed"
	EventTypeExecutionCancelled = "execution.cancelled"
	EventTypeExecutionSuspended = "execution.suspended"
	EventTypeExecutionResumed   = "execution.resumed"

	EventTypeNodeStarted  = "node.started"
	EventTypeNodeCompleted = "node.completed"
	EventTypeNodeFailed   = "node.failed"
	EventTypeNodeSkipped  = "node.skipped"
	EventTypeNodeRetrying = "node.retrying"

	EventTypeConditionEvaluated = "condition.evaluated"
	EventTypeErrorOccurred      = "error.occurred"
)

// IsExecutionEvent reports whether the event is execution-level.
func (e *Event) IsExecutionEvent() bool {
	switch e.EventType {
	case EventTypeExecutionStarted, EventTypeExecutionCompleted, EventTypeExecutionFailed,
		EventTypeExecutionCancelled, EventTypeExecutionSuspended, EventTypeExecutionResumed:
		return true
	}
	return false
}

// IsNodeEvent reports whether the event is node-level.
func (e *Event) IsNodeEvent() bool {
	switch e.EventType {
	case EventTypeNodeStarted, EventTypeNodeCompleted, EventTypeNodeFailed,
		EventTypeNodeSkipped, EventTypeNodeRetrying:
		return true
	}
	return false
}

// Validate checks required fields.
func (e *Event) Validate() error {
	if e.ExecutionID == "" {
		return &ValidationError{Field: "execution_id", Message: "execution ID is required"}
	}
	if e.EventType == "" {
		return &ValidationError{Field: "event_type", Message: "event type is required"}
	}
	return nil
}

// NodeID extracts the node ID from the payload, if present.
func (e *Event) NodeID() string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload["node_id"].(string); ok {
		return v
	}
	return ""
}

// ErrorMessage extracts the error message from the payload, if present.
func (e *Event) ErrorMessage() string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload["error"].(string); ok {
		return v
	}
	return ""
}
