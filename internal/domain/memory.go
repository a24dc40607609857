// File: internal/domain/memory.go
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Memory is a durable note accumulated during conversations. ProjectID nil
// means a general (user-scoped) memory; otherwise the memory belongs to a
// project.
type Memory struct {
	ID         string         `json:"id" gorm:"type:uuid;primarykey"`
	UserID     string         `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID  *string        `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Title      string         `json:"title" gorm:"size:200;not null"`
	Content    string         `json:"content" gorm:"type:text;not null"`
	Summary    string         `json:"summary,omitempty" gorm:"type:text"`
	Tags       datatypes.JSON `json:"tags,omitempty"`
	Importance int            `json:"importance" gorm:"default:5"` // 1-10
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsGeneral reports whether the memory is user-scoped rather than
// project-scoped.
func (m *Memory) IsGeneral() bool {
	return m.ProjectID == nil
}
