// File: internal/services/transcript/transcript_test.go
package transcript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

func newTestDecoder() *Decoder {
	return NewDecoder(noopLogger{})
}

func TestRoundTripPlainAssistantTurn(t *testing.T) {
	rec := EncodeAssistantTurn("chat-1", Turn{Role: domain.RoleAssistant, Content: "hello"})

	assert.Equal(t, "hello", rec.Content)
	assert.Nil(t, rec.Parts)

	turn := newTestDecoder().DecodeRecord(rec)
	assert.Equal(t, domain.RoleAssistant, turn.Role)
	assert.Equal(t, "hello", turn.Content)
	assert.Empty(t, turn.Segments)
	assert.Empty(t, turn.ToolInvocations)
}

func TestRoundTripToolInvocationTurn(t *testing.T) {
	invocations := []ToolInvocation{{
		ToolCallID: "t1",
		ToolName:   "createMemory",
		Args:       json.RawMessage(`{"title":"x"}`),
		State:      StateResult,
		Result:     json.RawMessage(`{"success":true}`),
	}}

	rec := EncodeAssistantTurn("chat-1", Turn{
		Role:            domain.RoleAssistant,
		Content:         "",
		ToolInvocations: invocations,
	})

	require.NotNil(t, rec.Parts)
	assert.Equal(t, "", rec.Content)

	turn := newTestDecoder().DecodeRecord(rec)
	require.Len(t, turn.ToolInvocations, 1)
	got := turn.ToolInvocations[0]
	assert.Equal(t, "t1", got.ToolCallID)
	assert.Equal(t, "createMemory", got.ToolName)
	assert.Equal(t, StateResult, got.State)
	assert.JSONEq(t, `{"title":"x"}`, string(got.Args))
	assert.JSONEq(t, `{"success":true}`, string(got.Result))
}

func TestRoundTripSegmentArrayTurn(t *testing.T) {
	segments := []Segment{
		{Type: SegmentText, Text: "A"},
		{Type: SegmentText, Text: "B"},
	}

	rec := EncodeAssistantTurn("chat-1", Turn{Role: domain.RoleAssistant, Segments: segments})

	assert.Equal(t, "A\n\nB", rec.Content)
	require.NotNil(t, rec.Parts)

	var stored []Segment
	require.NoError(t, json.Unmarshal(rec.Parts, &stored))
	assert.Len(t, stored, 2)

	turn := newTestDecoder().DecodeRecord(rec)
	assert.Equal(t, segments, turn.Segments)
	assert.Equal(t, "A\n\nB", turn.Content)
}

func TestReasoningSegmentsExcludedFromFlattenedContent(t *testing.T) {
	rec := EncodeAssistantTurn("chat-1", Turn{
		Role: domain.RoleAssistant,
		Segments: []Segment{
			{Type: SegmentReasoning, Reasoning: "thinking it through"},
			{Type: SegmentText, Text: "answer"},
		},
	})

	assert.Equal(t, "answer", rec.Content)

	turn := newTestDecoder().DecodeRecord(rec)
	require.Len(t, turn.Segments, 2)
	assert.Equal(t, SegmentReasoning, turn.Segments[0].Type)
}

func TestEnvelopeWinsWhenSegmentsAndInvocationsCoexist(t *testing.T) {
	rec := EncodeAssistantTurn("chat-1", Turn{
		Role:     domain.RoleAssistant,
		Segments: []Segment{{Type: SegmentText, Text: "done"}},
		ToolInvocations: []ToolInvocation{{
			ToolCallID: "t2", ToolName: "getProjects", State: StateResult,
			Result: json.RawMessage(`{"success":true}`),
		}},
	})

	assert.Equal(t, "done", rec.Content)

	turn := newTestDecoder().DecodeRecord(rec)
	require.Len(t, turn.ToolInvocations, 1)
	assert.Equal(t, "done", turn.Content)
	assert.Empty(t, turn.Segments)
}

func TestMalformedPartsTolerance(t *testing.T) {
	rec := domain.Message{
		ID:      7,
		ChatID:  "chat-1",
		Role:    domain.RoleAssistant,
		Content: "salvaged text",
		Parts:   datatypes.JSON(`{not valid json`),
	}

	turn := newTestDecoder().DecodeRecord(rec)
	assert.Equal(t, domain.RoleAssistant, turn.Role)
	assert.Equal(t, "salvaged text", turn.Content)
	assert.Empty(t, turn.Segments)
	assert.Empty(t, turn.ToolInvocations)
}

func TestObjectPartsWithoutInvocationsDegradesToPlain(t *testing.T) {
	// Older writer stored the whole message object; without a
	// toolInvocations field there is nothing structured to recover.
	rec := domain.Message{
		ID:      8,
		ChatID:  "chat-1",
		Role:    domain.RoleAssistant,
		Content: "plain fallback",
		Parts:   datatypes.JSON(`{"role":"assistant","content":"plain fallback"}`),
	}

	turn := newTestDecoder().DecodeRecord(rec)
	assert.Equal(t, "plain fallback", turn.Content)
	assert.Empty(t, turn.ToolInvocations)
}

func TestEncodeUserTurnStructuredContent(t *testing.T) {
	rec := EncodeUserTurn("chat-1", "user-1", Turn{
		Role:     domain.RoleUser,
		Segments: []Segment{{Type: SegmentText, Text: "look at this"}},
		Attachments: []Attachment{
			{Name: "notes.txt", ContentType: "text/plain", URL: "file://notes.txt"},
		},
	})

	require.NotNil(t, rec.UserID)
	assert.Equal(t, "user-1", *rec.UserID)

	// Structured user content is serialized whole into the content column.
	var segments []Segment
	require.NoError(t, json.Unmarshal([]byte(rec.Content), &segments))
	assert.Len(t, segments, 1)

	turn := newTestDecoder().DecodeRecord(rec)
	require.Len(t, turn.Attachments, 1)
	assert.Equal(t, "notes.txt", turn.Attachments[0].Name)
}

func TestEncodeAssistantTurnsSkipsNonAssistantRoles(t *testing.T) {
	records := EncodeAssistantTurns("chat-1", []Turn{
		{Role: domain.RoleAssistant, Content: "first"},
		{Role: domain.RoleUser, Content: "should not persist"},
		{Role: domain.RoleAssistant, Content: "second"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Content)
	assert.Equal(t, "second", records[1].Content)
}

func TestDecodeRecordsPreservesOrder(t *testing.T) {
	records := []domain.Message{
		{ID: 1, ChatID: "chat-1", Role: domain.RoleUser, Content: "q"},
		{ID: 2, ChatID: "chat-1", Role: domain.RoleAssistant, Content: "a"},
	}

	turns := newTestDecoder().DecodeRecords(records)
	require.Len(t, turns, 2)
	assert.Equal(t, "q", turns[0].Content)
	assert.Equal(t, "a", turns[1].Content)
	assert.Equal(t, "1", turns[0].ID)
	assert.Equal(t, "2", turns[1].ID)
}
