package models

import "time"

// ResumeKind discriminates the resume-token tagged union.
type ResumeKind string

const (
	ResumeStart   ResumeKind = "start"
	ResumeAtNode  ResumeKind = "at_node"
)

// ResumeToken is the re-entry pointer for a Job: either Start (enter at the
// Trigger) or AtNode (re-enter after a suspension, carrying the payload the
// node should resume with).
type ResumeToken struct {
	Kind    ResumeKind     `json:"kind"`
	NodeID  string         `json:"node_id,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// StartToken builds a Start resume token.
func StartToken() ResumeToken { return ResumeToken{Kind: ResumeStart} }

// AtNodeToken builds an AtNode resume token.
func AtNodeToken(nodeID string, payload map[string]any) ResumeToken {
	return ResumeToken{Kind: ResumeAtNode, NodeID: nodeID, Payload: payload}
}

// Job is the internal queue element consumed by a worker.
type Job struct {
	ExecutionID string      `json:"execution_id"`
	ResumeToken ResumeToken `json:"resume_token"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
	Attempt     int         `json:"attempt"`
}
