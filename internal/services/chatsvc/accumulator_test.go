// File: internal/services/chatsvc/accumulator_test.go
package chatsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

func TestAccumulatorMergesConsecutiveDeltas(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(ai.StreamEvent{Type: ai.EventReasoningDelta, Text: "step one, "})
	acc.Apply(ai.StreamEvent{Type: ai.EventReasoningDelta, Text: "step two"})
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "Hello "})
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "world"})

	turns := acc.Turns()
	require.Len(t, turns, 1)
	require.Len(t, turns[0].Segments, 2)

	assert.Equal(t, transcript.SegmentReasoning, turns[0].Segments[0].Type)
	assert.Equal(t, "step one, step two", turns[0].Segments[0].Reasoning)
	assert.Equal(t, transcript.SegmentText, turns[0].Segments[1].Type)
	assert.Equal(t, "Hello world", turns[0].Segments[1].Text)
}

func TestAccumulatorAttachesToolResultToItsCall(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(ai.StreamEvent{Type: ai.EventToolCall, ToolCallID: "call_1", ToolName: "createMemory", Args: []byte(`{"title":"t"}`)})
	acc.Apply(ai.StreamEvent{Type: ai.EventToolResult, ToolCallID: "call_1", ToolName: "createMemory", Result: []byte(`{"success":true}`)})

	turns := acc.Turns()
	require.Len(t, turns, 1)
	require.Len(t, turns[0].ToolInvocations, 1)

	inv := turns[0].ToolInvocations[0]
	assert.Equal(t, "call_1", inv.ToolCallID)
	assert.Equal(t, transcript.StateResult, inv.State)
	assert.JSONEq(t, `{"success":true}`, string(inv.Result))
}

func TestAccumulatorSplitsTurnsAtMessageBoundaries(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "first"})
	acc.Apply(ai.StreamEvent{Type: ai.EventMessageEnd})
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "second"})

	turns := acc.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].TextContent())
	assert.Equal(t, "second", turns[1].TextContent())
}

func TestAccumulatorIgnoresErrorEventsAndEmptyBoundaries(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(ai.StreamEvent{Type: ai.EventMessageEnd})
	acc.Apply(ai.StreamEvent{Type: ai.EventError, Message: "A tool encountered an error during execution. Please try again."})
	acc.Apply(ai.StreamEvent{Type: ai.EventMessageEnd})

	assert.Empty(t, acc.Turns())
}

func TestSealedTurnsExcludeTheOpenTurn(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "finished"})
	acc.Apply(ai.StreamEvent{Type: ai.EventMessageEnd})
	acc.Apply(ai.StreamEvent{Type: ai.EventTextDelta, Text: "still streaming"})

	sealed := acc.SealedTurns()
	require.Len(t, sealed, 1)
	assert.Equal(t, "finished", sealed[0].TextContent())
}
