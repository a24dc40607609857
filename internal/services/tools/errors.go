// File: internal/services/tools/errors.go
package tools

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a tool dispatch failure.
type ErrorKind string

const (
	ErrKindUnknownTool      ErrorKind = "UNKNOWN_TOOL"
	ErrKindInvalidArguments ErrorKind = "INVALID_ARGUMENTS"
	ErrKindExecutionFailed  ErrorKind = "EXECUTION_FAILED"
)

// ToolError reports why a tool call could not produce a result object.
type ToolError struct {
	Kind ErrorKind
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool %s: %s: %v", e.Tool, e.Kind, e.Err)
	}
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Kind)
}

func (e *ToolError) Unwrap() error { return e.Err }

func NewUnknownToolError(tool string) *ToolError {
	return &ToolError{Kind: ErrKindUnknownTool, Tool: tool}
}

func NewInvalidArgumentsError(tool string) *ToolError {
	return &ToolError{Kind: ErrKindInvalidArguments, Tool: tool}
}

func NewExecutionError(tool string, err error) *ToolError {
	return &ToolError{Kind: ErrKindExecutionFailed, Tool: tool, Err: err}
}

// KindOf extracts the failure classification, defaulting to execution
// failure for untyped errors.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrKindExecutionFailed
}
