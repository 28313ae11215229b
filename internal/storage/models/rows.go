package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WorkflowRow is the workflows table: identity and enablement only. The
// graph itself lives in WorkflowVersionRow.Snapshot — a workflow with no
// version rows has never been saved and cannot run.
type WorkflowRow struct {
	bun.BaseModel `bun:"table:workflows,alias:w"`

	ID          string    `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	Enabled     bool      `bun:"enabled,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// WorkflowVersionRow is an immutable snapshot of a workflow's graph, keyed
// by (workflow_id, version_number) — the cache key from spec §4.3.
type WorkflowVersionRow struct {
	bun.BaseModel `bun:"table:workflow_versions,alias:wv"`

	ID            string           `bun:"id,pk,type:uuid"`
	WorkflowID    string           `bun:"workflow_id,notnull"`
	VersionNumber int              `bun:"version_number,notnull"`
	Snapshot      WorkflowSnapshot `bun:"snapshot,type:jsonb,notnull"`
	CommitMessage string           `bun:"commit_message,notnull"`
	Description   string           `bun:"description"`
	Author        string           `bun:"author"`
	CreatedAt     time.Time        `bun:"created_at,notnull,default:current_timestamp"`
}

// ExecutionRow is the executions table.
type ExecutionRow struct {
	bun.BaseModel `bun:"table:executions,alias:e"`

	ID            string     `bun:"id,pk,type:uuid"`
	WorkflowID    string     `bun:"workflow_id,notnull"`
	VersionNumber int        `bun:"version_number,notnull"`
	Status        string     `bun:"status,notnull"`
	Input         JSONBMap   `bun:"input,type:jsonb"`
	Output        JSONBMap   `bun:"output,type:jsonb"`
	CurrentNodeID string     `bun:"current_node_id"`
	Error         string     `bun:"error"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	StartedAt     *time.Time `bun:"started_at"`
	CompletedAt   *time.Time `bun:"completed_at"`
}

// ExecutionStepRow is the execution_steps table — one row per node attempt,
// the unit idempotency and at-least-once retry bookkeeping is keyed on.
type ExecutionStepRow struct {
	bun.BaseModel `bun:"table:execution_steps,alias:es"`

	ID          string     `bun:"id,pk,type:uuid"`
	ExecutionID string     `bun:"execution_id,notnull"`
	NodeID      string     `bun:"node_id,notnull"`
	Status      string     `bun:"status,notnull"`
	Input       JSONBMap   `bun:"input,type:jsonb"`
	Output      JSONBMap   `bun:"output,type:jsonb"`
	Error       string     `bun:"error"`
	Attempt     int        `bun:"attempt,notnull,default:1"`
	StartedAt   time.Time  `bun:"started_at,notnull,default:current_timestamp"`
	CompletedAt *time.Time `bun:"completed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

// VariableRow is the variables table. Value is ciphertext at rest for
// secrets (sealed/opened by internal/secrets before it ever reaches here).
type VariableRow struct {
	bun.BaseModel `bun:"table:variables,alias:v"`

	ID          string    `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull,unique"`
	ValueType   string    `bun:"value_type,notnull"`
	Value       string    `bun:"value,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// EventRow is the execution event log table, append-only.
type EventRow struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID          string    `bun:"id,pk,type:uuid"`
	ExecutionID string    `bun:"execution_id,notnull"`
	EventType   string    `bun:"event_type,notnull"`
	Sequence    int64     `bun:"sequence,notnull"`
	Payload     JSONBMap  `bun:"payload,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
