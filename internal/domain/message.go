// File: internal/domain/message.go
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Message roles as stored in the messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleData      = "data"
	RoleTool      = "tool"
)

// Message is the durable, flattened form of one conversation turn.
//
// Content always holds the plain-text projection of the turn. Parts, when
// present, holds one of three historical JSON encodings of the structured
// payload (segment array, {content, toolInvocations} envelope, or a whole
// message object written by an older route). Old rows are immutable, so all
// three encodings must stay decodable indefinitely.
type Message struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	ChatID      string         `json:"chat_id" gorm:"type:uuid;not null;index"`
	UserID      *string        `json:"user_id,omitempty" gorm:"type:uuid"` // nil for assistant rows
	Role        string         `json:"role" gorm:"size:32;not null"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	Parts       datatypes.JSON `json:"parts,omitempty"`
	Attachments datatypes.JSON `json:"attachments,omitempty"` // user rows only
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}
