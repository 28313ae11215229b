package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Engine resolves {{ ... }} placeholders in strings and nested data
// structures (node config maps decoded from JSON).
type Engine struct {
	resolver *Resolver
	options  Options
}

// NewEngine builds an engine bound to ctx.
func NewEngine(ctx *VariableContext, opts Options) *Engine {
	return &Engine{resolver: NewResolver(ctx, opts), options: opts}
}

// NewEngineWithDefaults builds an engine with DefaultOptions.
func NewEngineWithDefaults(ctx *VariableContext) *Engine {
	return NewEngine(ctx, DefaultOptions())
}

// placeholderPattern matches "{{ env.NAME }}" / "{{event.items.0.id}}" with
// optional surrounding whitespace inside the braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Resolve walks data (string, map, slice, or JSON-roundtrippable struct) and
// substitutes every placeholder it finds.
func (e *Engine) Resolve(data interface{}) (interface{}, error) {
	if data == nil {
		return nil, nil
	}

	switch v := data.(type) {
	case string:
		return e.ResolveString(v)
	case map[string]interface{}:
		return e.resolveMap(v)
	case []interface{}:
		return e.resolveSlice(v)
	default:
		return e.resolveComplex(v)
	}
}

// ResolveString substitutes every placeholder in a single string. If the
// whole string is exactly one placeholder, the resolved value's native JSON
// type is preserved (an object/array placeholder doesn't get stringified);
// otherwise every match is converted to its string form and spliced in.
func (e *Engine) ResolveString(tmpl string) (interface{}, error) {
	if tmpl == "" {
		return tmpl, nil
	}

	if m := placeholderPattern.FindStringSubmatch(tmpl); m != nil && m[0] == strings.TrimSpace(tmpl) {
		root, path := parseRef(m[1])
		value, err := e.resolveOne(tmpl, root, path)
		if err != nil {
			return nil, err
		}
		return value, nil
	}

	var resolveErr error
	result := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		if resolveErr != nil {
			return match
		}
		inner := strings.TrimSpace(match[2 : len(match)-2])
		root, path := parseRef(inner)
		value, err := e.resolveOne(tmpl, root, path)
		if err != nil {
			resolveErr = err
			return ""
		}
		return valueToString(value)
	})

	if resolveErr != nil {
		return nil, resolveErr
	}
	return result, nil
}

func (e *Engine) resolveOne(tmpl, root, path string) (interface{}, error) {
	if root == "" {
		if e.options.StrictMode {
			return nil, fmt.Errorf("%w: invalid reference in %q", ErrInvalidTemplate, tmpl)
		}
		return "", nil
	}

	value, err := e.resolver.ResolveVariable(root, path)
	if err != nil {
		if e.options.StrictMode {
			return nil, &Error{Template: tmpl, Root: root, Path: path, Err: err}
		}
		if e.options.PlaceholderOnMissing {
			return "{{ " + root + "." + path + " }}", nil
		}
		return "", nil
	}
	return value, nil
}

func (e *Engine) resolveMap(m map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))
	for key, value := range m {
		resolved, err := e.Resolve(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		result[key] = resolved
	}
	return result, nil
}

func (e *Engine) resolveSlice(s []interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(s))
	for i, value := range s {
		resolved, err := e.Resolve(value)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		result[i] = resolved
	}
	return result, nil
}

func (e *Engine) resolveComplex(data interface{}) (interface{}, error) {
	switch data.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return data, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return data, nil
	}

	var generic interface{}
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		return data, nil
	}

	switch v := generic.(type) {
	case map[string]interface{}:
		return e.resolveMap(v)
	case []interface{}:
		return e.resolveSlice(v)
	case string:
		return e.ResolveString(v)
	default:
		return generic, nil
	}
}

// parseRef splits "root.path" into its root ("env"/"event") and remaining
// dot-path.
func parseRef(ref string) (string, string) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) < 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func valueToString(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

// HasPlaceholders reports whether s contains any {{ ... }} reference.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}

// ExtractReferences returns every "root.path" reference found in s.
func ExtractReferences(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			refs = append(refs, strings.TrimSpace(m[1]))
		}
	}
	return refs
}

// ValidateTemplate checks every reference in s has the "root.path" shape and
// a known root.
func ValidateTemplate(s string) error {
	for _, ref := range ExtractReferences(s) {
		root, path := parseRef(ref)
		if root == "" {
			return fmt.Errorf("%w: %q (expected root.path)", ErrInvalidTemplate, ref)
		}
		if root != "env" && root != "event" {
			return fmt.Errorf("%w: unknown root %q (supported: env, event)", ErrInvalidTemplate, root)
		}
		if path == "" {
			return fmt.Errorf("%w: empty path for root %q", ErrInvalidTemplate, root)
		}
	}
	return nil
}
