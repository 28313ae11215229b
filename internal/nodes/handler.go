// Package nodes implements the per-kind execution of a workflow node, per
// spec §4.4.
//
// Grounded on pkg/executor/executor.go's Executor interface, with its
// (any, error) return replaced by the richer Outcome sum type so a handler
// can express Continue/Branch/Suspend/Fail/Skip without the engine having to
// infer which one happened from a bare error.
package nodes

import (
	"context"

	"github.com/openobserve/swisspipe/pkg/models"
)

// Handler executes one node kind against the current event.
type Handler interface {
	// Execute runs config (already template-resolved by the caller) against
	// event and returns the Outcome the engine should act on.
	Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error)

	// Validate checks a config for structural correctness at save time,
	// independent of any particular event.
	Validate(config *models.NodeConfig) error
}

// HandlerFunc adapts a plain function to the Handler interface when no
// Validate beyond "the config pointer for this kind is non-nil" is needed.
type HandlerFunc func(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error)

func (f HandlerFunc) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	return f(ctx, config, event)
}

func (f HandlerFunc) Validate(config *models.NodeConfig) error { return nil }
