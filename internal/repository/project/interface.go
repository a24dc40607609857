// File: internal/repository/project/interface.go
package project

import (
	"context"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// ProjectRepository handles project data operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, projectID, userID string) error
	VerifyOwnership(ctx context.Context, projectID, userID string) (bool, error)
}
