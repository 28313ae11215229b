package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// DelayHandler never sleeps in-process: it returns a Suspend(Delay, fire_at)
// outcome and lets the delay scheduler (component H) re-enqueue the
// execution when fire_at elapses. Grounded on repurposing the retry/backoff
// timing idiom from pkg/engine/retry_policy.go into a suspend-not-sleep
// outcome, per spec §4.4.
type DelayHandler struct {
	Base
}

func (h *DelayHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.Delay
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("delay node: missing config")
	}
	fireAt := time.Now().Add(time.Duration(cfg.DurationMs) * time.Millisecond).UnixMilli()
	// NodeID is left empty: the engine stamps this node's successor onto the
	// token before persisting it, since Execute has no node identity.
	token := models.AtNodeToken("", event)
	return models.SuspendOutcome(models.SuspendReasonDelay, &fireAt, &token), nil
}

func (h *DelayHandler) Validate(config *models.NodeConfig) error {
	cfg := config.Delay
	if cfg == nil {
		return fmt.Errorf("delay node: missing config")
	}
	return h.RequirePositive("duration_ms", cfg.DurationMs)
}
