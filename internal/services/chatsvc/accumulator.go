// File: internal/services/chatsvc/accumulator.go
package chatsvc

import (
	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

// Accumulator folds the ordered completion event stream into assistant
// turns. Text and reasoning deltas extend the current turn's segment
// sequence, tool calls and results attach to its invocation side channel,
// and a message boundary seals the turn and opens the next one. Inline
// error events are delivery-only and never become persisted content.
type Accumulator struct {
	sealed  []transcript.Turn
	current *transcript.Turn
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply folds one event into the accumulated state.
func (a *Accumulator) Apply(ev ai.StreamEvent) {
	switch ev.Type {
	case ai.EventTextDelta:
		turn := a.ensureCurrent()
		if n := len(turn.Segments); n > 0 && turn.Segments[n-1].Type == transcript.SegmentText {
			turn.Segments[n-1].Text += ev.Text
		} else {
			turn.Segments = append(turn.Segments, transcript.Segment{
				Type: transcript.SegmentText,
				Text: ev.Text,
			})
		}

	case ai.EventReasoningDelta:
		turn := a.ensureCurrent()
		if n := len(turn.Segments); n > 0 && turn.Segments[n-1].Type == transcript.SegmentReasoning {
			turn.Segments[n-1].Reasoning += ev.Text
		} else {
			turn.Segments = append(turn.Segments, transcript.Segment{
				Type:      transcript.SegmentReasoning,
				Reasoning: ev.Text,
			})
		}

	case ai.EventToolCall:
		turn := a.ensureCurrent()
		turn.ToolInvocations = append(turn.ToolInvocations, transcript.ToolInvocation{
			ToolCallID: ev.ToolCallID,
			ToolName:   ev.ToolName,
			Args:       ev.Args,
			State:      transcript.StateCall,
		})

	case ai.EventToolResult:
		turn := a.ensureCurrent()
		for i := range turn.ToolInvocations {
			if turn.ToolInvocations[i].ToolCallID == ev.ToolCallID {
				turn.ToolInvocations[i].State = transcript.StateResult
				turn.ToolInvocations[i].Result = ev.Result
				break
			}
		}

	case ai.EventMessageEnd:
		a.seal()
	}
}

// Turns seals any open turn and returns every accumulated assistant turn in
// emission order.
func (a *Accumulator) Turns() []transcript.Turn {
	a.seal()
	return a.sealed
}

// SealedTurns returns only the turns already closed by a message boundary,
// leaving any open turn in place. This is what survives a caller
// cancellation: a turn still mid-stream is not persistable content.
func (a *Accumulator) SealedTurns() []transcript.Turn {
	return a.sealed
}

func (a *Accumulator) ensureCurrent() *transcript.Turn {
	if a.current == nil {
		a.current = &transcript.Turn{Role: domain.RoleAssistant}
	}
	return a.current
}

func (a *Accumulator) seal() {
	if a.current == nil {
		return
	}
	if len(a.current.Segments) > 0 || len(a.current.ToolInvocations) > 0 {
		a.sealed = append(a.sealed, *a.current)
	}
	a.current = nil
}
