// File: internal/services/usage/errors.go
package usage

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeLimitExceeded ErrorType = "LIMIT_EXCEEDED"
	ErrTypeAuthRequired  ErrorType = "AUTH_REQUIRED"
)

// LimitExceededError is the gate's admission refusal. The message is
// user-readable and safe to surface directly.
type LimitExceededError struct {
	Type    ErrorType
	UserID  string
	Model   string
	Message string
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("Usage %s error for model %s: %s", e.Type, e.Model, e.Message)
}

func NewLimitExceededError(userID, model, msg string) *LimitExceededError {
	return &LimitExceededError{Type: ErrTypeLimitExceeded, UserID: userID, Model: model, Message: msg}
}

func NewAuthRequiredError(userID, model string) *LimitExceededError {
	return &LimitExceededError{
		Type:    ErrTypeAuthRequired,
		UserID:  userID,
		Model:   model,
		Message: "You must log in to use this model.",
	}
}

// IsLimitExceeded reports whether err is an admission refusal from the gate.
func IsLimitExceeded(err error) bool {
	var limitErr *LimitExceededError
	return errors.As(err, &limitErr)
}
