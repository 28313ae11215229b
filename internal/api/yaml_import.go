package api

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/openobserve/swisspipe/pkg/models"
)

// decodeWorkflowYAML parses a YAML workflow definition, a supplemented
// dual-format import alongside the JSON commit body, grounded on
// internal/application/importer/yaml_importer.go. Unlike the teacher's
// importer (which hand-maps YAML fields onto a free-form Config map), this
// round-trips through JSON so the tagged-union NodeConfig's own
// UnmarshalJSON does the per-node-kind decoding, instead of duplicating it.
func decodeWorkflowYAML(data []byte) (*models.Workflow, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	jsonBytes, err := json.Marshal(normalizeYAML(generic))
	if err != nil {
		return nil, fmt.Errorf("convert YAML to JSON: %w", err)
	}

	var wf models.Workflow
	if err := json.Unmarshal(jsonBytes, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	return &wf, nil
}

// normalizeYAML recursively converts map[string]interface{} keys that
// yaml.v3 may produce as non-string scalars into a shape encoding/json can
// marshal, and descends into slices.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return val
	}
}
