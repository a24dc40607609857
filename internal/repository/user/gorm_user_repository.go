// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := user.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
		log.Printf("[UserRepository] Database error checking email uniqueness: %v", err)
		return nil, errors.New("database error creating user")
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("[UserRepository] Database error during user creation: %v", err)
		return nil, errors.New("database error creating user")
	}

	log.Printf("[UserRepository] User created with ID %s", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, errors.New("invalid email")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] FindByEmail database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &user, nil
}

func (r *gormUserRepository) ResetDailyUsage(ctx context.Context, userID string, now time.Time) error {
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"daily_message_count": 0,
		"daily_reset":         now,
	})
}

func (r *gormUserRepository) ResetDailyProUsage(ctx context.Context, userID string, now time.Time) error {
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"daily_pro_message_count": 0,
		"daily_pro_reset":         now,
	})
}

func (r *gormUserRepository) ResetDailyMemoryUsage(ctx context.Context, userID string, now time.Time) error {
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"daily_memory_count": 0,
		"daily_memory_reset": now,
	})
}

func (r *gormUserRepository) IncrementMessageUsage(ctx context.Context, userID string) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"message_count":       user.MessageCount + 1,
		"daily_message_count": user.DailyMessageCount + 1,
		"last_active_at":      time.Now().UTC(),
	})
}

func (r *gormUserRepository) IncrementProUsage(ctx context.Context, userID string) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"daily_pro_message_count": user.DailyProMsgCount + 1,
		"last_active_at":          time.Now().UTC(),
	})
}

func (r *gormUserRepository) IncrementMemoryUsage(ctx context.Context, userID string) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return r.updateCounters(ctx, userID, map[string]interface{}{
		"memory_count":       user.MemoryCount + 1,
		"daily_memory_count": user.DailyMemoryCount + 1,
	})
}

func (r *gormUserRepository) updateCounters(ctx context.Context, userID string, updates map[string]interface{}) error {
	if userID == "" {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error updating usage counters for user %s: %v", userID, result.Error)
		return errors.New("database error updating usage counters")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
