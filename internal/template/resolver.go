package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Resolver resolves a single "root.path" reference against a VariableContext.
type Resolver struct {
	context *VariableContext
	options Options
}

// NewResolver creates a resolver bound to ctx.
func NewResolver(ctx *VariableContext, opts Options) *Resolver {
	return &Resolver{context: ctx, options: opts}
}

// ResolveVariable resolves a reference like "env.API_KEY" or
// "event.headers.content-type" or "event.items.0.id".
func (r *Resolver) ResolveVariable(root, path string) (interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %s requires a path", ErrInvalidTemplate, root)
	}

	var value interface{}
	var found bool

	switch root {
	case "env":
		value, found = r.resolveRooted(r.context.GetEnv, path)
	case "event":
		value, found = r.resolveRooted(r.context.GetEvent, path)
	default:
		return nil, fmt.Errorf("%w: unknown root %q", ErrInvalidTemplate, root)
	}

	if !found {
		return nil, fmt.Errorf("%w: {{ %s.%s }}", ErrVariableNotFound, root, path)
	}
	return value, nil
}

func (r *Resolver) resolveRooted(lookup func(string) (interface{}, bool), path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	root, found := lookup(parts[0])
	if !found {
		return nil, false
	}
	if len(parts) == 1 {
		return root, true
	}
	return r.traversePath(root, parts[1:])
}

// traversePath walks each remaining dot-segment. A segment that parses as a
// non-negative integer is tried as an array index first; any segment (numeric
// or not) that fails as an index falls back to a literal map-key lookup, so a
// numeric-looking map key and a hyphenated key both resolve correctly.
func (r *Resolver) traversePath(value interface{}, parts []string) (interface{}, bool) {
	current := value

	for _, part := range parts {
		if idx, err := strconv.Atoi(part); err == nil {
			if next, ok := r.indexArray(current, idx); ok {
				current = next
				continue
			}
		}

		next := r.resolveField(current, part)
		if next == nil {
			return nil, false
		}
		current = next
	}

	return current, true
}

// resolveField resolves a literal map key (or exported struct field) on value.
func (r *Resolver) resolveField(value interface{}, field string) interface{} {
	if value == nil {
		return nil
	}

	if m, ok := value.(map[string]interface{}); ok {
		return m[field]
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		f := v.FieldByName(field)
		if f.IsValid() {
			return f.Interface()
		}
	}

	if data, err := json.Marshal(value); err == nil {
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err == nil {
			return m[field]
		}
	}

	return nil
}

// indexArray applies a numeric index to a slice/array value.
func (r *Resolver) indexArray(value interface{}, index int) (interface{}, bool) {
	if value == nil || index < 0 {
		return nil, false
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if index >= v.Len() {
			return nil, false
		}
		return v.Index(index).Interface(), true
	}

	if data, err := json.Marshal(value); err == nil {
		var arr []interface{}
		if err := json.Unmarshal(data, &arr); err == nil {
			if index >= len(arr) {
				return nil, false
			}
			return arr[index], true
		}
	}

	return nil, false
}
