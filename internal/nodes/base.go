package nodes

import "fmt"

// Base holds the config-validation helpers shared by every handler,
// adapted from pkg/executor/executor.go's BaseExecutor. Node configs are now
// typed structs rather than map[string]any, so these operate directly on
// field values instead of doing map lookups.
type Base struct{}

// RequireString validates that value (named field, for the error message)
// is non-empty.
func (Base) RequireString(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s: required field is empty", field)
	}
	return nil
}

// RequireNonEmptySlice validates that a []string field has at least one
// element.
func (Base) RequireNonEmptySlice(field string, value []string) error {
	if len(value) == 0 {
		return fmt.Errorf("%s: required field is empty", field)
	}
	return nil
}

// RequirePositive validates that an int64/int duration-style field is > 0.
func (Base) RequirePositive(field string, value int64) error {
	if value <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", field, value)
	}
	return nil
}
