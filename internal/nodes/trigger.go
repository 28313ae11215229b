package nodes

import (
	"context"
	"fmt"

	"github.com/openobserve/swisspipe/pkg/models"
)

// TriggerHandler is the entry node of every workflow. Admission (method
// allow-list check, event construction) happens in internal/ingestion before
// an Execution row ever exists; by the time the engine reaches a Trigger
// node the method has already been validated, so Execute is a pass-through
// that simply forwards the ingested event as the first Continue outcome.
//
// Grounded on the method-allow-list idiom in the teacher's
// internal/application/trigger/event_listener.go.
type TriggerHandler struct {
	Base
}

func (h *TriggerHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	if config.Trigger == nil {
		return models.Outcome{}, fmt.Errorf("trigger node: missing config")
	}
	return models.ContinueOutcome(event), nil
}

func (h *TriggerHandler) Validate(config *models.NodeConfig) error {
	if config.Trigger == nil {
		return fmt.Errorf("trigger node: missing config")
	}
	return h.RequireNonEmptySlice("allowed_methods", config.Trigger.AllowedMethods)
}
