// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
)

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeProvider ErrorType = "PROVIDER"
	ErrTypeCanceled ErrorType = "CANCELED"
)

type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// Fixed user-facing messages for tool failures. These are the only tool
// error detail that ever reaches a client.
const (
	MsgToolNotAvailable  = "The AI tried to use a tool that is not available. Please try again."
	MsgToolInvalidArgs   = "The AI called a tool with invalid arguments. Please try rephrasing your request."
	MsgToolExecutionFail = "A tool encountered an error during execution. Please try again."
)

// ToolUserMessage maps a tool dispatch failure to its fixed user-facing
// message.
func ToolUserMessage(err error) string {
	switch tools.KindOf(err) {
	case tools.ErrKindUnknownTool:
		return MsgToolNotAvailable
	case tools.ErrKindInvalidArguments:
		return MsgToolInvalidArgs
	default:
		return MsgToolExecutionFail
	}
}

// IsCanceled reports whether the error is context cancellation or deadline
// expiry, unwrapping provider error wrappers.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
