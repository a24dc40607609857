// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a single conversation thread, optionally scoped to a project.
type Chat struct {
	ID        string    `json:"id" gorm:"type:uuid;primarykey"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID *string   `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Title     string    `json:"title" gorm:"size:200"`
	Model     string    `json:"model" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
