// File: internal/services/chatsvc/errors.go
package chatsvc

import "fmt"

type ErrorType string

const (
	ErrTypeConfig       ErrorType = "CONFIG"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeStreaming    ErrorType = "STREAMING"
	ErrTypePersistence  ErrorType = "PERSISTENCE"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    string
	UserID    string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewUnauthorizedError(userID, chatID string) *ChatError {
	return &ChatError{
		Type:      ErrTypeUnauthorized,
		Operation: "authorization",
		Message:   "chat not found or unauthorized",
		UserID:    userID,
		ChatID:    chatID,
	}
}

func NewStreamingError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStreaming, Operation: operation, Message: msg, Cause: cause}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

// IsValidation reports whether err is a request validation failure, used by
// the transport layer to choose a 4xx status.
func IsValidation(err error) bool {
	ce, ok := err.(*ChatError)
	return ok && ce.Type == ErrTypeValidation
}

// IsUnauthorized reports whether err is an ownership or authorization
// failure.
func IsUnauthorized(err error) bool {
	ce, ok := err.(*ChatError)
	return ok && ce.Type == ErrTypeUnauthorized
}
