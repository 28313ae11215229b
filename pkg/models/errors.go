// Package models defines the public domain models and error types for SwissPipe.
package models

import "errors"

// Sentinel errors used across the storage and engine layers.
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrWorkflowDisabled = errors.New("workflow is disabled")
	ErrNodeNotFound     = errors.New("node not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrInvalidNodeType  = errors.New("invalid node type")

	ErrExecutionNotFound = errors.New("execution not found")
	ErrAlreadyRunning    = errors.New("execution is already running")

	ErrVariableNotFound = errors.New("variable not found")
	ErrVariableExists   = errors.New("variable already exists")

	ErrHandlerNotFound = errors.New("node handler not found")

	ErrVersionConflict = errors.New("version number conflict")
)

// ErrorKind classifies every error the core surfaces, per §7.
type ErrorKind string

const (
	ErrorKindValidation         ErrorKind = "Validation"
	ErrorKindNotFound           ErrorKind = "NotFound"
	ErrorKindForbidden          ErrorKind = "Forbidden"
	ErrorKindConflict           ErrorKind = "Conflict"
	ErrorKindStorageTransient   ErrorKind = "StorageTransient"
	ErrorKindStorageFatal       ErrorKind = "StorageFatal"
	ErrorKindScriptError        ErrorKind = "ScriptError"
	ErrorKindScriptTimeout      ErrorKind = "ScriptTimeout"
	ErrorKindTimeout            ErrorKind = "Timeout"
	ErrorKindNetworkError       ErrorKind = "NetworkError"
	ErrorKindMissingVariable    ErrorKind = "MissingVariable"
	ErrorKindDecryptionError    ErrorKind = "DecryptionError"
	ErrorKindCancelled          ErrorKind = "Cancelled"
	ErrorKindRecoveredFromCrash ErrorKind = "RecoveredFromCrash"
)

// SPError wraps an error with the Kind the engine needs to decide the next
// action (retry, stop, surface to the operator, ...).
type SPError struct {
	Kind ErrorKind
	Err  error
}

func (e *SPError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *SPError) Unwrap() error { return e.Err }

// NewSPError wraps err with kind.
func NewSPError(kind ErrorKind, err error) *SPError {
	return &SPError{Kind: kind, Err: err}
}

// Retryable reports whether the engine's retry policy should ever attempt
// this kind again. MissingVariable, Validation, NotFound, Forbidden, and
// DecryptionError are never retried.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindStorageTransient, ErrorKindTimeout, ErrorKindNetworkError, ErrorKindRecoveredFromCrash:
		return true
	default:
		return false
	}
}

// ValidationError represents a validation error with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
