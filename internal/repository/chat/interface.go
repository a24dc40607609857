// File: internal/repository/chat/interface.go
package chat

import (
	"context"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// ChatRepository handles chat thread data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error)
	Delete(ctx context.Context, chatID, userID string) error
	TouchUpdatedAt(ctx context.Context, chatID string) error
	VerifyOwnership(ctx context.Context, chatID, userID string) (bool, error)
}
