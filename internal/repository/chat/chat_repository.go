// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")
var ErrUnauthorizedAccess = errors.New("unauthorized access to chat")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := r.validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for user %s: %v", chat.UserID, err)
		return nil, errors.New("database error creating chat")
	}

	log.Printf("[ChatRepository] Chat created with ID %s for user %s", chat.ID, chat.UserID)
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &chat, nil
}

func (r *gormChatRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error

	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user %s: %v", userID, err)
		return nil, errors.New("database error fetching chats")
	}

	return chats, nil
}

// Delete removes a chat and its messages; the ownership predicate is part of
// the delete itself so a non-owner sees the same error as a missing chat.
func (r *gormChatRepository) Delete(ctx context.Context, chatID, userID string) error {
	if chatID == "" || userID == "" {
		return errors.New("invalid chat ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.Chat{})

	if result.Error != nil {
		log.Printf("[ChatRepository] Database error deleting chat %s for user %s: %v", chatID, userID, result.Error)
		return errors.New("database error deleting chat")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedAccess
	}

	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error; err != nil {
		log.Printf("[ChatRepository] Database error cascading message delete for chat %s: %v", chatID, err)
		return errors.New("database error deleting chat messages")
	}

	log.Printf("[ChatRepository] Chat deleted: ID %s for user %s", chatID, userID)
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID string) error {
	if chatID == "" {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))

	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat %s: %v", chatID, result.Error)
		return errors.New("database error updating chat timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// VerifyOwnership checks chat ownership without exposing chat data.
func (r *gormChatRepository) VerifyOwnership(ctx context.Context, chatID, userID string) (bool, error) {
	if chatID == "" || userID == "" {
		return false, errors.New("invalid chat ID or user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Chat{}).
		Where("id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error checking chat ownership for chat %s, user %s: %v", chatID, userID, err)
		return false, errors.New("database error checking chat ownership")
	}

	return count > 0, nil
}

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.UserID == "" {
		return errors.New("user ID is required")
	}
	if len(chat.Title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	if strings.Contains(chat.Title, "<script") || strings.Contains(chat.Title, "javascript:") {
		return errors.New("invalid characters detected in title")
	}
	return nil
}
