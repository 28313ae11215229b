package engine

import "github.com/openobserve/swisspipe/pkg/models"

// nextTargets returns every ToNodeID of edges leaving fromNodeID that match
// branch (nil for a Continue/Skip outcome, a pointer to the Condition
// result for a Branch outcome), in the graph's declared edge order. The
// first result becomes the loop's next cursor; any remaining results are
// fanned out as separate Jobs on the same execution, per spec §4.6.
func nextTargets(graph *models.Workflow, fromNodeID string, branch *bool) []string {
	var targets []string
	for _, edge := range graph.Edges {
		if edge.FromNodeID != fromNodeID {
			continue
		}
		if branch != nil {
			if edge.ConditionResult == nil || *edge.ConditionResult != *branch {
				continue
			}
		} else if edge.ConditionResult != nil {
			continue
		}
		targets = append(targets, edge.ToNodeID)
	}
	return targets
}

// nextSingle returns the first matching target, or false if the node is
// terminal (no matching outgoing edge).
func nextSingle(graph *models.Workflow, fromNodeID string, branch *bool) (string, bool) {
	targets := nextTargets(graph, fromNodeID, branch)
	if len(targets) == 0 {
		return "", false
	}
	return targets[0], true
}
