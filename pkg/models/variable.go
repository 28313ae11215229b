package models

import (
	"regexp"
	"time"
)

// ValueType discriminates plain-text variables from secrets (encrypted at
// rest, masked on read).
type ValueType string

const (
	ValueTypeText   ValueType = "text"
	ValueTypeSecret ValueType = "secret"
)

// variableNamePattern is the wire contract for Variable.Name: uppercase
// alphanumeric and underscore only.
var variableNamePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Variable is a named value resolved by the template engine as
// {{ env.NAME }}. Secret values are stored as ciphertext and masked on read.
type Variable struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ValueType   ValueType `json:"value_type"`
	Value       string    `json:"value"` // plaintext in memory, ciphertext at rest for secrets
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaskedValue is the ••••••••-style redaction used for list/read responses.
const MaskedValue = "••••••••"

// Validate checks the name pattern and value type.
func (v *Variable) Validate() error {
	if !variableNamePattern.MatchString(v.Name) {
		return &ValidationError{Field: "name", Message: "must match [A-Z0-9_]+"}
	}
	if v.ValueType != ValueTypeText && v.ValueType != ValueTypeSecret {
		return &ValidationError{Field: "value_type", Message: "must be text or secret"}
	}
	return nil
}

// DisplayValue returns the value the admin API should render: masked for
// secrets, verbatim for plain text.
func (v *Variable) DisplayValue() string {
	if v.ValueType == ValueTypeSecret {
		return MaskedValue
	}
	return v.Value
}
