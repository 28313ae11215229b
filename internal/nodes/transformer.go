package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/openobserve/swisspipe/internal/jssandbox"
	"github.com/openobserve/swisspipe/pkg/models"
)

// TransformerHandler runs a script against the current event and replaces
// the event with its return value, per spec §4.4.
//
// Grounded on pkg/executor/builtin/transform.go's mode-dispatch shape, but
// the node's primary mode ("js") executes in the JS sandbox (component E); a
// jq mode is kept for callers who prefer a jq filter over a JS one-liner,
// reusing itchyny/gojq exactly as the teacher's transform executor does.
type TransformerHandler struct {
	Base
	Sandbox *jssandbox.Sandbox
}

func (h *TransformerHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.Transformer
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("transformer node: missing config")
	}

	switch cfg.Mode {
	case "jq":
		out, err := runJQ(cfg.Filter, event)
		if err != nil {
			return models.FailOutcome(models.ErrorKindScriptError, err.Error()), nil
		}
		return models.ContinueOutcome(out), nil
	default: // "js" or unset
		result, _, err := h.Sandbox.Execute(ctx, cfg.Script, event)
		if err != nil {
			if spErr, ok := err.(*models.SPError); ok {
				return models.FailOutcome(spErr.Kind, spErr.Error()), nil
			}
			return models.FailOutcome(models.ErrorKindScriptError, err.Error()), nil
		}
		out, ok := result.(map[string]any)
		if !ok {
			return models.FailOutcome(models.ErrorKindScriptError, "transformer script must return an object"), nil
		}
		return models.ContinueOutcome(out), nil
	}
}

func (h *TransformerHandler) Validate(config *models.NodeConfig) error {
	cfg := config.Transformer
	if cfg == nil {
		return fmt.Errorf("transformer node: missing config")
	}
	if cfg.Mode == "jq" {
		return h.RequireString("filter", cfg.Filter)
	}
	return h.RequireString("script", cfg.Script)
}

func runJQ(filter string, event map[string]any) (map[string]any, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("parse jq filter: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq filter: %w", err)
	}
	iter := code.Run(map[string]any(event))
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq filter produced no output")
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("jq filter execution error: %w", err)
	}
	out, ok := v.(map[string]any)
	if !ok {
		// round-trip through JSON to coerce jq's native types into map[string]any
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("jq filter did not produce an object")
		}
		out = map[string]any{}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("jq filter did not produce an object")
		}
	}
	return out, nil
}
