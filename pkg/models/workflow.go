package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Workflow represents a complete workflow definition with its DAG structure.
// Exactly one node of kind Trigger is expected per workflow; callers are
// responsible for auto-creating it when a workflow is first saved.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Node represents a single node in the workflow DAG. Identity is by ID, not
// by name: names are mutable labels only.
type Node struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position Position   `json:"position"`
	Type     NodeConfig `json:"node_type"`
}

// Position represents the visual position of a node in the editor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge represents a directed connection between two nodes. ConditionResult is
// populated only when the source is a Condition node; SourceHandle is
// populated only for multi-output nodes such as HumanInLoop.
type Edge struct {
	ID              string  `json:"id"`
	FromNodeID      string  `json:"from_node_id"`
	ToNodeID        string  `json:"to_node_id"`
	ConditionResult *bool   `json:"condition_result,omitempty"`
	SourceHandleID  *string `json:"source_handle_id,omitempty"`
}

// Validate validates the workflow structure per the invariants in §3:
// exactly one Trigger node, no self-loops or duplicate edges, a true and a
// false outgoing edge for every Condition node, at most one
// outgoing edge per (condition_result, source_handle_id) combination.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(w.Nodes) == 0 {
		return &ValidationError{Field: "nodes", Message: "at least one node is required"}
	}

	nodeIDs := make(map[string]*Node, len(w.Nodes))
	triggerCount := 0
	for _, node := range w.Nodes {
		if err := node.Validate(); err != nil {
			return err
		}
		if _, dup := nodeIDs[node.ID]; dup {
			return &ValidationError{Field: "nodes", Message: fmt.Sprintf("duplicate node ID: %s", node.ID)}
		}
		nodeIDs[node.ID] = node
		if node.Type.Kind == NodeKindTrigger {
			triggerCount++
		}
	}
	if triggerCount != 1 {
		return &ValidationError{Field: "nodes", Message: fmt.Sprintf("workflow must have exactly one Trigger node, found %d", triggerCount)}
	}

	seenEdgeID := make(map[string]bool, len(w.Edges))
	type branchKey struct {
		from   string
		result string
		handle string
	}
	seenBranch := make(map[branchKey]bool, len(w.Edges))
	trueFalseBySource := make(map[string]map[bool]bool)

	for _, edge := range w.Edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		if seenEdgeID[edge.ID] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("duplicate edge ID: %s", edge.ID)}
		}
		seenEdgeID[edge.ID] = true

		from, ok := nodeIDs[edge.FromNodeID]
		if !ok {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent source node: %s", edge.FromNodeID)}
		}
		if _, ok := nodeIDs[edge.ToNodeID]; !ok {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent target node: %s", edge.ToNodeID)}
		}

		key := branchKey{from: edge.FromNodeID}
		if edge.ConditionResult != nil {
			key.result = fmt.Sprintf("%v", *edge.ConditionResult)
		}
		if edge.SourceHandleID != nil {
			key.handle = *edge.SourceHandleID
		}
		if seenBranch[key] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("node %s has more than one outgoing edge for the same (condition_result, source_handle_id)", edge.FromNodeID)}
		}
		seenBranch[key] = true

		if from.Type.Kind == NodeKindCondition && edge.ConditionResult != nil {
			if trueFalseBySource[edge.FromNodeID] == nil {
				trueFalseBySource[edge.FromNodeID] = make(map[bool]bool)
			}
			trueFalseBySource[edge.FromNodeID][*edge.ConditionResult] = true
		}
	}

	for _, node := range w.Nodes {
		if node.Type.Kind != NodeKindCondition {
			continue
		}
		branches := trueFalseBySource[node.ID]
		if !branches[true] || !branches[false] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("condition node %s must have exactly one true edge and one false edge", node.ID)}
		}
	}

	return nil
}

// Validate validates the node structure.
func (n *Node) Validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Message: "node ID is required"}
	}
	if n.Name == "" {
		return &ValidationError{Field: "name", Message: "node name is required"}
	}
	if n.Type.Kind == "" {
		return &ValidationError{Field: "node_type", Message: "node type is required"}
	}
	return nil
}

// Validate validates the edge structure. No self-loops; HTTP-loop re-enqueue
// is handled by the scheduler, not by an edge, so it is never represented
// here.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Message: "edge ID is required"}
	}
	if e.FromNodeID == "" {
		return &ValidationError{Field: "from_node_id", Message: "edge source is required"}
	}
	if e.ToNodeID == "" {
		return &ValidationError{Field: "to_node_id", Message: "edge target is required"}
	}
	if e.FromNodeID == e.ToNodeID {
		return &ValidationError{Field: "edge", Message: "self-loop edges are not allowed"}
	}
	return nil
}

// GetNode returns a node by ID.
func (w *Workflow) GetNode(nodeID string) (*Node, error) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}

// GetEdge returns an edge by ID.
func (w *Workflow) GetEdge(edgeID string) (*Edge, error) {
	for _, edge := range w.Edges {
		if edge.ID == edgeID {
			return edge, nil
		}
	}
	return nil, ErrEdgeNotFound
}

// TriggerNode returns the workflow's single Trigger node.
func (w *Workflow) TriggerNode() (*Node, error) {
	for _, node := range w.Nodes {
		if node.Type.Kind == NodeKindTrigger {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}

// Clone creates a deep copy of the workflow via a JSON round trip.
func (w *Workflow) Clone() (*Workflow, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	var clone Workflow
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
