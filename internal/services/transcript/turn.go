// File: internal/services/transcript/turn.go
package transcript

import (
	"encoding/json"
	"time"
)

// Logger defines the logging interface used by the transcript codec.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// InvocationState tracks whether a tool invocation is still pending or has
// produced a result.
type InvocationState string

const (
	StateCall   InvocationState = "call"
	StateResult InvocationState = "result"
)

// ToolInvocation is a request by the completion engine to call a capability,
// plus its result once available.
type ToolInvocation struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args,omitempty"`
	State      InvocationState `json:"state"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// SegmentType identifies one typed piece of structured assistant content.
type SegmentType string

const (
	SegmentText           SegmentType = "text"
	SegmentReasoning      SegmentType = "reasoning"
	SegmentToolInvocation SegmentType = "tool-invocation"
)

// Segment is one element of a structured content sequence.
type Segment struct {
	Type           SegmentType     `json:"type"`
	Text           string          `json:"text,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	ToolInvocation *ToolInvocation `json:"toolInvocation,omitempty"`
}

// Attachment describes a file attached to a user turn.
type Attachment struct {
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	URL         string `json:"url"`
}

// Turn is one logical message of a conversation in structured in-memory form.
// Content is the plain-text projection; Segments, when non-empty, is the
// authoritative structured sequence the content was flattened from.
// ToolInvocations carries call/result pairs attached to the turn as a side
// channel rather than inline segments.
type Turn struct {
	ID              string           `json:"id,omitempty"`
	Role            string           `json:"role"`
	Content         string           `json:"content"`
	Segments        []Segment        `json:"parts,omitempty"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	Attachments     []Attachment     `json:"experimental_attachments,omitempty"`
	CreatedAt       time.Time        `json:"createdAt,omitempty"`
}

// TextContent returns the plain-text projection of the turn: the flattened
// Content when no segments exist, otherwise the text segments joined by a
// blank line.
func (t Turn) TextContent() string {
	if len(t.Segments) == 0 {
		return t.Content
	}
	return joinTextSegments(t.Segments)
}
