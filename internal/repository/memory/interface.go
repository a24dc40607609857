// File: internal/repository/memory/interface.go
package memory

import (
	"context"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

// MemoryRepository handles project-scoped and general (user-scoped) memories.
type MemoryRepository interface {
	Create(ctx context.Context, memory *domain.Memory) (*domain.Memory, error)
	FindByID(ctx context.Context, id string) (*domain.Memory, error)
	FindByProjectID(ctx context.Context, projectID, userID string) ([]domain.Memory, error)
	FindGeneralByUserID(ctx context.Context, userID string) ([]domain.Memory, error)
	Update(ctx context.Context, memory *domain.Memory) error
	Delete(ctx context.Context, memoryID, userID string) error
	CountByUserID(ctx context.Context, userID string) (int64, error)
}
