package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// HumanInLoopHandler suspends the execution awaiting an external decision
// callback, with a timeout fallback. Grounded on the observer/event-
// emission pattern in internal/application/observer for the one-shot
// notification fanout, and on internal/application/trigger/webhook_registry.go's
// callback-URL-binding idiom for the decision callback itself (the external
// HTTP surface for that callback is out of scope per spec; this handler
// only produces the Suspend outcome the scheduler/engine need).
type HumanInLoopHandler struct {
	Base
}

func (h *HumanInLoopHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.HumanInLoop
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("human_in_loop node: missing config")
	}
	fireAt := time.Now().Add(time.Duration(cfg.TimeoutMs) * time.Millisecond).UnixMilli()
	token := models.AtNodeToken("", event)
	return models.SuspendOutcome(models.SuspendReasonHil, &fireAt, &token), nil
}

func (h *HumanInLoopHandler) Validate(config *models.NodeConfig) error {
	cfg := config.HumanInLoop
	if cfg == nil {
		return fmt.Errorf("human_in_loop node: missing config")
	}
	if err := h.RequireString("title", cfg.Title); err != nil {
		return err
	}
	if cfg.TimeoutAction != "approved" && cfg.TimeoutAction != "denied" {
		return fmt.Errorf("timeout_action: must be approved or denied, got %q", cfg.TimeoutAction)
	}
	return h.RequirePositive("timeout_ms", cfg.TimeoutMs)
}
