// File: internal/repository/project/project_repository.go
package project

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

var ErrProjectNotFound = errors.New("project not found")
var ErrUnauthorizedProjectAccess = errors.New("unauthorized access to project")

type gormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := r.validateProjectInput(project); err != nil {
		log.Printf("[ProjectRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		log.Printf("[ProjectRepository] Database error during project creation for user %s: %v", project.UserID, err)
		return nil, errors.New("database error creating project")
	}

	log.Printf("[ProjectRepository] Project created with ID %s for user %s", project.ID, project.UserID)
	return project, nil
}

func (r *gormProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	if id == "" {
		return nil, errors.New("invalid project ID")
	}

	var project domain.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		log.Printf("[ProjectRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &project, nil
}

func (r *gormProjectRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&projects).Error

	if err != nil {
		log.Printf("[ProjectRepository] Database error finding projects for user %s: %v", userID, err)
		return nil, errors.New("database error fetching projects")
	}

	return projects, nil
}

func (r *gormProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return errors.New("invalid project")
	}
	if err := r.validateProjectInput(project); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ? AND user_id = ?", project.ID, project.UserID).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
		})

	if result.Error != nil {
		log.Printf("[ProjectRepository] Database error updating project %s: %v", project.ID, result.Error)
		return errors.New("database error updating project")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedProjectAccess
	}
	return nil
}

func (r *gormProjectRepository) Delete(ctx context.Context, projectID, userID string) error {
	if projectID == "" || userID == "" {
		return errors.New("invalid project ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", projectID, userID).
		Delete(&domain.Project{})

	if result.Error != nil {
		log.Printf("[ProjectRepository] Database error deleting project %s for user %s: %v", projectID, userID, result.Error)
		return errors.New("database error deleting project")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedProjectAccess
	}

	log.Printf("[ProjectRepository] Project deleted: ID %s for user %s", projectID, userID)
	return nil
}

func (r *gormProjectRepository) VerifyOwnership(ctx context.Context, projectID, userID string) (bool, error) {
	if projectID == "" || userID == "" {
		return false, errors.New("invalid project ID or user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		log.Printf("[ProjectRepository] Database error checking project ownership for project %s, user %s: %v", projectID, userID, err)
		return false, errors.New("database error checking project ownership")
	}

	return count > 0, nil
}

func (r *gormProjectRepository) validateProjectInput(project *domain.Project) error {
	if project == nil {
		return errors.New("project cannot be nil")
	}
	if project.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(project.Name) == "" {
		return errors.New("project name is required")
	}
	if len(project.Name) > 200 {
		return errors.New("project name must be 200 characters or less")
	}
	return nil
}
