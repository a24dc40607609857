// File: internal/services/ai/interface.go
package ai

import (
	"context"
	"encoding/json"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

// Logger defines the logging interface used by the completion engine.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// EventType identifies one kind of stream event.
type EventType string

const (
	EventTextDelta      EventType = "text-delta"
	EventReasoningDelta EventType = "reasoning-delta"
	EventToolCall       EventType = "tool-call"
	EventToolResult     EventType = "tool-result"
	EventMessageEnd     EventType = "message-end"
	EventError          EventType = "error"
)

// StreamEvent is one element of the ordered completion event stream. Only
// the fields relevant to the Type are set. EventMessageEnd marks the
// boundary between assistant messages in a multi-step completion.
type StreamEvent struct {
	Type EventType

	// EventTextDelta / EventReasoningDelta
	Text string

	// EventToolCall / EventToolResult
	ToolCallID string
	ToolName   string
	Args       json.RawMessage
	Result     json.RawMessage

	// EventError carries a user-facing message, never internal detail.
	Message string
}

// CompletionRequest describes one streaming completion over a chat history.
type CompletionRequest struct {
	Model   string
	System  string
	History []transcript.Turn

	// Identity and chat context threaded through to tool execution.
	Auth        domain.AuthContext
	ToolContext tools.RequestContext
}

// CompletionEngine is the provider-facing boundary. Implementations emit
// events in delivery order via onEvent; a non-nil onEvent error aborts the
// stream and is returned unchanged.
type CompletionEngine interface {
	StreamCompletion(ctx context.Context, req CompletionRequest, onEvent func(StreamEvent) error) error
}
