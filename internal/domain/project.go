// File: internal/domain/project.go
package domain

import "time"

// Project groups chats and memories under a single workspace.
type Project struct {
	ID          string    `json:"id" gorm:"type:uuid;primarykey"`
	UserID      string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
