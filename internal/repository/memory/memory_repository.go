// File: internal/repository/memory/memory_repository.go
package memory

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

var ErrMemoryNotFound = errors.New("memory not found")
var ErrUnauthorizedMemoryAccess = errors.New("unauthorized access to memory")

type gormMemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &gormMemoryRepository{db: db}
}

func (r *gormMemoryRepository) Create(ctx context.Context, memory *domain.Memory) (*domain.Memory, error) {
	if err := r.validateMemoryInput(memory); err != nil {
		log.Printf("[MemoryRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if memory.ID == "" {
		memory.ID = uuid.NewString()
	}
	if memory.Importance == 0 {
		memory.Importance = 5
	}

	if err := r.db.WithContext(ctx).Create(memory).Error; err != nil {
		log.Printf("[MemoryRepository] Database error during memory creation for user %s: %v", memory.UserID, err)
		return nil, errors.New("database error creating memory")
	}

	log.Printf("[MemoryRepository] Memory created with ID %s for user %s", memory.ID, memory.UserID)
	return memory, nil
}

func (r *gormMemoryRepository) FindByID(ctx context.Context, id string) (*domain.Memory, error) {
	if id == "" {
		return nil, errors.New("invalid memory ID")
	}

	var memory domain.Memory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&memory).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoryNotFound
		}
		log.Printf("[MemoryRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &memory, nil
}

// FindByProjectID lists a project's memories, most important and most
// recently updated first.
func (r *gormMemoryRepository) FindByProjectID(ctx context.Context, projectID, userID string) ([]domain.Memory, error) {
	if projectID == "" || userID == "" {
		return nil, errors.New("invalid project ID or user ID")
	}

	var memories []domain.Memory
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("importance DESC, updated_at DESC").
		Find(&memories).Error

	if err != nil {
		log.Printf("[MemoryRepository] Database error finding memories for project %s: %v", projectID, err)
		return nil, errors.New("database error fetching project memories")
	}

	return memories, nil
}

// FindGeneralByUserID lists memories not tied to any project.
func (r *gormMemoryRepository) FindGeneralByUserID(ctx context.Context, userID string) ([]domain.Memory, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var memories []domain.Memory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id IS NULL", userID).
		Order("importance DESC, updated_at DESC").
		Find(&memories).Error

	if err != nil {
		log.Printf("[MemoryRepository] Database error finding general memories for user %s: %v", userID, err)
		return nil, errors.New("database error fetching general memories")
	}

	return memories, nil
}

func (r *gormMemoryRepository) Update(ctx context.Context, memory *domain.Memory) error {
	if memory == nil || memory.ID == "" {
		return errors.New("invalid memory")
	}
	if err := r.validateMemoryInput(memory); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Memory{}).
		Where("id = ? AND user_id = ?", memory.ID, memory.UserID).
		Updates(map[string]interface{}{
			"title":      memory.Title,
			"content":    memory.Content,
			"summary":    memory.Summary,
			"tags":       memory.Tags,
			"importance": memory.Importance,
		})

	if result.Error != nil {
		log.Printf("[MemoryRepository] Database error updating memory %s: %v", memory.ID, result.Error)
		return errors.New("database error updating memory")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedMemoryAccess
	}
	return nil
}

func (r *gormMemoryRepository) Delete(ctx context.Context, memoryID, userID string) error {
	if memoryID == "" || userID == "" {
		return errors.New("invalid memory ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", memoryID, userID).
		Delete(&domain.Memory{})

	if result.Error != nil {
		log.Printf("[MemoryRepository] Database error deleting memory %s for user %s: %v", memoryID, userID, result.Error)
		return errors.New("database error deleting memory")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedMemoryAccess
	}

	log.Printf("[MemoryRepository] Memory deleted: ID %s for user %s", memoryID, userID)
	return nil
}

func (r *gormMemoryRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.New("invalid user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Memory{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		log.Printf("[MemoryRepository] Database error counting memories for user %s: %v", userID, err)
		return 0, errors.New("database error counting memories")
	}

	return count, nil
}

func (r *gormMemoryRepository) validateMemoryInput(memory *domain.Memory) error {
	if memory == nil {
		return errors.New("memory cannot be nil")
	}
	if memory.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(memory.Title) == "" {
		return errors.New("memory title is required")
	}
	if strings.TrimSpace(memory.Content) == "" {
		return errors.New("memory content is required")
	}
	if memory.Importance < 0 || memory.Importance > 10 {
		return errors.New("importance must be between 1 and 10")
	}
	return nil
}
