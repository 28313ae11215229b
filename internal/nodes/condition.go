package nodes

import (
	"context"
	"fmt"

	"github.com/openobserve/swisspipe/internal/jssandbox"
	"github.com/openobserve/swisspipe/pkg/models"
)

// ConditionHandler runs a boolean-returning script against the current
// event and branches, per spec §4.4. Grounded on
// pkg/executor/builtin/conditional.go's dispatch shape; the branch predicate
// itself runs in the JS sandbox — expr-lang/expr is reserved for the
// retry-eligibility predicate on outbound-call nodes (internal/engine/
// retry_predicate.go), not node-level branching.
type ConditionHandler struct {
	Base
	Sandbox *jssandbox.Sandbox
}

func (h *ConditionHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.Condition
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("condition node: missing config")
	}

	result, _, err := h.Sandbox.Execute(ctx, cfg.Script, event)
	if err != nil {
		if spErr, ok := err.(*models.SPError); ok {
			return models.FailOutcome(spErr.Kind, spErr.Error()), nil
		}
		return models.FailOutcome(models.ErrorKindScriptError, err.Error()), nil
	}
	branch, ok := result.(bool)
	if !ok {
		return models.FailOutcome(models.ErrorKindScriptError, "condition script must return a boolean"), nil
	}
	return models.BranchOutcome(branch, event), nil
}

func (h *ConditionHandler) Validate(config *models.NodeConfig) error {
	cfg := config.Condition
	if cfg == nil {
		return fmt.Errorf("condition node: missing config")
	}
	return h.RequireString("script", cfg.Script)
}
