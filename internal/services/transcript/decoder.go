// File: internal/services/transcript/decoder.go
package transcript

import (
	"encoding/json"
	"strconv"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// Decoder rehydrates persisted message records into structured turns. The
// store holds three coexisting historical encodings of the parts column, so
// decoding runs an ordered chain of interpretation attempts resolved by
// structural inspection: the {content, toolInvocations} envelope first (an
// envelope is an object, an array is not), then the segment array, then the
// legacy plain form. Malformed parts never fail a read; the record degrades
// to its flattened content and the degradation is reported as a non-fatal
// data-quality event.
type Decoder struct {
	logger Logger
}

func NewDecoder(logger Logger) *Decoder {
	return &Decoder{logger: logger}
}

// DecodeRecord reconstructs a single turn from its persisted record.
func (d *Decoder) DecodeRecord(rec domain.Message) Turn {
	turn := Turn{
		ID:        strconv.FormatUint(uint64(rec.ID), 10),
		Role:      rec.Role,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}

	if len(rec.Attachments) > 0 {
		var attachments []Attachment
		if err := json.Unmarshal(rec.Attachments, &attachments); err == nil {
			turn.Attachments = attachments
		} else {
			d.logger.Warn("malformed attachments payload, dropping",
				"message_id", rec.ID, "chat_id", rec.ChatID)
		}
	}

	if len(rec.Parts) == 0 {
		return turn
	}

	for _, interpret := range []func(domain.Message, *Turn) bool{
		d.tryEnvelope,
		d.trySegmentArray,
	} {
		if interpret(rec, &turn) {
			return turn
		}
	}

	d.logger.Warn("undecodable parts payload, falling back to plain content",
		"message_id", rec.ID, "chat_id", rec.ChatID)
	return turn
}

// DecodeRecords reconstructs the ordered transcript. Output order matches the
// store's listing order exactly.
func (d *Decoder) DecodeRecords(records []domain.Message) []Turn {
	turns := make([]Turn, 0, len(records))
	for _, rec := range records {
		turns = append(turns, d.DecodeRecord(rec))
	}
	return turns
}

// tryEnvelope matches a JSON object carrying a toolInvocations field. The
// envelope's own content string wins over the flattened column when present;
// whole-message objects written by an older route land here too, since they
// carry the same field.
func (d *Decoder) tryEnvelope(rec domain.Message, turn *Turn) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec.Parts, &fields); err != nil {
		return false
	}

	rawInvocations, ok := fields["toolInvocations"]
	if !ok {
		return false
	}

	var invocations []ToolInvocation
	if err := json.Unmarshal(rawInvocations, &invocations); err != nil {
		return false
	}

	if rawContent, ok := fields["content"]; ok {
		var content string
		if err := json.Unmarshal(rawContent, &content); err == nil {
			turn.Content = content
		}
	}
	turn.ToolInvocations = invocations
	return true
}

// trySegmentArray matches the segment-array encoding; the decoded sequence
// overrides the flattened content as the authoritative structured form.
func (d *Decoder) trySegmentArray(rec domain.Message, turn *Turn) bool {
	var segments []Segment
	if err := json.Unmarshal(rec.Parts, &segments); err != nil {
		return false
	}
	turn.Segments = segments
	return true
}
