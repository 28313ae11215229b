package models

import "time"

// WorkflowVersion is an immutable, commit-style snapshot of a workflow's
// full JSON at a point in time. version_number is unique per workflow,
// starts at 1, and has no gaps on success.
type WorkflowVersion struct {
	ID            string    `json:"id"`
	WorkflowID    string    `json:"workflow_id"`
	VersionNumber int       `json:"version_number"`
	Snapshot      *Workflow `json:"snapshot"`
	CommitMessage string    `json:"commit_message"`
	Description   string    `json:"description,omitempty"`
	Author        string    `json:"author,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate enforces the commit-message and description length limits of §4.9.
func (v *WorkflowVersion) Validate() error {
	if v.CommitMessage == "" || len(v.CommitMessage) > 100 {
		return &ValidationError{Field: "commit_message", Message: "must be 1..100 characters"}
	}
	if len(v.Description) > 1000 {
		return &ValidationError{Field: "description", Message: "must be at most 1000 characters"}
	}
	return nil
}
