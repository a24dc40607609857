// File: internal/repository/user/interface.go
package user

import (
	"context"
	"time"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// UserRepository handles user data and usage-counter operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Usage counters. Increments are read-then-write, not atomic; the usage
	// gate documents this as approximate counting.
	ResetDailyUsage(ctx context.Context, userID string, now time.Time) error
	ResetDailyProUsage(ctx context.Context, userID string, now time.Time) error
	ResetDailyMemoryUsage(ctx context.Context, userID string, now time.Time) error
	IncrementMessageUsage(ctx context.Context, userID string) error
	IncrementProUsage(ctx context.Context, userID string) error
	IncrementMemoryUsage(ctx context.Context, userID string) error
}
