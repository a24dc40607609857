// File: internal/domain/user.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primarykey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Anonymous bool      `json:"anonymous"`
	Premium   bool      `json:"premium"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Usage counters consumed by the usage gate. Daily counters reset on UTC
	// calendar-day rollover; the read-then-increment update is deliberately
	// approximate (see usage service).
	MessageCount       int        `json:"message_count"`
	DailyMessageCount  int        `json:"daily_message_count"`
	DailyReset         *time.Time `json:"daily_reset,omitempty"`
	DailyProMsgCount   int        `json:"daily_pro_message_count" gorm:"column:daily_pro_message_count"`
	DailyProReset      *time.Time `json:"daily_pro_reset,omitempty"`
	MemoryCount        int        `json:"memory_count"`
	DailyMemoryCount   int        `json:"daily_memory_count"`
	DailyMemoryReset   *time.Time `json:"daily_memory_reset,omitempty"`
	LastActiveAt       *time.Time `json:"last_active_at,omitempty"`
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) IsValid() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if len(u.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	return nil
}
