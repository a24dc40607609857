// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create appends a single message record. The record is immutable after
// creation; there is no update path.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		// Secure logging - message bodies never reach the log.
		log.Printf("[MessageRepository] Database error during message creation for chat %s: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created with ID %d for chat %s", message.ID, message.ChatID)
	return message, nil
}

// CreateInBatch appends records in submission order and returns how many were
// written. Pre-validates all records so a malformed one fails fast before
// anything is persisted.
func (r *gormMessageRepository) CreateInBatch(ctx context.Context, messages []*domain.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	for i, message := range messages {
		if err := r.validateMessageInput(message); err != nil {
			return 0, fmt.Errorf("validation failed for message %d: %w", i, err)
		}
	}

	if err := r.db.WithContext(ctx).CreateInBatches(messages, 100).Error; err != nil {
		log.Printf("[MessageRepository] Batch creation failed for chat %s: %v", messages[0].ChatID, err)
		return 0, errors.New("database error creating messages in batch")
	}

	log.Printf("[MessageRepository] Created %d messages for chat %s", len(messages), messages[0].ChatID)
	return len(messages), nil
}

// FindByChatID returns all records for a chat in ascending creation order,
// ties broken by insertion order.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat %s: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

// DeleteByChatID performs the bulk, unconditional clear of all messages
// belonging to a chat.
func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID string) error {
	if chatID == "" {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{})
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting messages for chat %s: %v", chatID, result.Error)
		return errors.New("database error deleting messages by chat ID")
	}

	log.Printf("[MessageRepository] Deleted %d messages for chat %s", result.RowsAffected, chatID)
	return nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID string) (int64, error) {
	if chatID == "" {
		return 0, errors.New("invalid chat ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat %s: %v", chatID, err)
		return 0, errors.New("database error counting chat messages")
	}

	return count, nil
}

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == "" {
		return errors.New("chat ID is required")
	}
	switch message.Role {
	case domain.RoleUser, domain.RoleAssistant, domain.RoleSystem, domain.RoleData, domain.RoleTool:
	default:
		return errors.New("invalid message role")
	}
	// An empty content string is valid: pure tool-invocation turns flatten
	// to "".
	return nil
}
