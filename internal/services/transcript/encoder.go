// File: internal/services/transcript/encoder.go
package transcript

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// partsEnvelope is the persisted shape for assistant turns that carry tool
// invocations as a side channel.
type partsEnvelope struct {
	Content         string           `json:"content"`
	ToolInvocations []ToolInvocation `json:"toolInvocations"`
}

// EncodeUserTurn flattens a user turn into its persisted record. Plain text
// is stored as-is; a structured segment sequence is serialized whole into the
// content column. Attachments are serialized when present.
func EncodeUserTurn(chatID, userID string, turn Turn) domain.Message {
	content := turn.Content
	if len(turn.Segments) > 0 {
		if raw, err := json.Marshal(turn.Segments); err == nil {
			content = string(raw)
		}
	}

	msg := domain.Message{
		ChatID:  chatID,
		UserID:  &userID,
		Role:    domain.RoleUser,
		Content: content,
	}
	if len(turn.Attachments) > 0 {
		if raw, err := json.Marshal(turn.Attachments); err == nil {
			msg.Attachments = datatypes.JSON(raw)
		}
	}
	return msg
}

// EncodeAssistantTurn flattens an assistant turn into its persisted record.
//
// Plain text with no invocations stores content alone. A structured segment
// sequence stores the text segments joined by a blank line as content (a
// lossy projection) and the full sequence as parts. Tool invocations store a
// {content, toolInvocations} envelope as parts; the envelope wins when both
// forms are present, matching the writer this store grew up with.
func EncodeAssistantTurn(chatID string, turn Turn) domain.Message {
	content := turn.Content
	var parts datatypes.JSON

	if len(turn.Segments) > 0 {
		content = joinTextSegments(turn.Segments)
		if raw, err := json.Marshal(turn.Segments); err == nil {
			parts = datatypes.JSON(raw)
		}
	}

	if len(turn.ToolInvocations) > 0 {
		env := partsEnvelope{
			Content:         content,
			ToolInvocations: turn.ToolInvocations,
		}
		if raw, err := json.Marshal(env); err == nil {
			parts = datatypes.JSON(raw)
		}
	}

	return domain.Message{
		ChatID:  chatID,
		Role:    domain.RoleAssistant,
		Content: content,
		Parts:   parts,
	}
}

// EncodeAssistantTurns encodes a response that resolved to multiple discrete
// assistant turns, one record per turn, in emission order.
func EncodeAssistantTurns(chatID string, turns []Turn) []*domain.Message {
	records := make([]*domain.Message, 0, len(turns))
	for _, turn := range turns {
		if turn.Role != domain.RoleAssistant {
			continue
		}
		msg := EncodeAssistantTurn(chatID, turn)
		records = append(records, &msg)
	}
	return records
}

// joinTextSegments concatenates all text-typed segments with a blank line
// between them. A malformed or empty sequence yields the empty string rather
// than an error; a single bad field must not lose the turn.
func joinTextSegments(segments []Segment) string {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Type == SegmentText {
			texts = append(texts, seg.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}
