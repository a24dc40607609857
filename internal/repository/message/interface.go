// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// MessageRepository is the persistence surface for message records. Appends
// never reorder; listing always returns ascending creation order. Failures
// surface to the caller as-is — retry policy belongs to the controller.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	CreateInBatch(ctx context.Context, messages []*domain.Message) (int, error)
	FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
	DeleteByChatID(ctx context.Context, chatID string) error
	CountByChatID(ctx context.Context, chatID string) (int64, error)
}
