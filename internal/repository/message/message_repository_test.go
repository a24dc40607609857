// File: internal/repository/message/message_repository_test.go
package message

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Message{}))
	return db
}

func TestCreateAssignsInsertionOrderedIDs(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleUser, Content: "one"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleAssistant, Content: "two"})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestFindByChatIDBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	// Identical timestamps force the tiebreak onto the primary key.
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contents := []string{"first", "second", "third", "fourth"}
	for _, content := range contents {
		_, err := repo.Create(ctx, &domain.Message{
			ChatID:    "chat-1",
			Role:      domain.RoleUser,
			Content:   content,
			CreatedAt: at,
		})
		require.NoError(t, err)
	}

	found, err := repo.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, found, len(contents))
	for i, content := range contents {
		assert.Equal(t, content, found[i].Content)
	}
}

func TestFindByChatIDOrdersByCreationTime(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	later := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleUser, Content: "later", CreatedAt: later})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleUser, Content: "earlier", CreatedAt: earlier})
	require.NoError(t, err)

	found, err := repo.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "earlier", found[0].Content)
	assert.Equal(t, "later", found[1].Content)
}

func TestFindByChatIDScopesToChat(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleUser, Content: "mine"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Message{ChatID: "chat-2", Role: domain.RoleUser, Content: "other"})
	require.NoError(t, err)

	found, err := repo.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "mine", found[0].Content)
}

func TestCreateInBatchPreservesSubmissionOrder(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	batch := []*domain.Message{
		{ChatID: "chat-1", Role: domain.RoleAssistant, Content: "a"},
		{ChatID: "chat-1", Role: domain.RoleAssistant, Content: "b"},
		{ChatID: "chat-1", Role: domain.RoleAssistant, Content: "c"},
	}
	n, err := repo.CreateInBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	found, err := repo.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "a", found[0].Content)
	assert.Equal(t, "c", found[2].Content)
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &domain.Message{ChatID: "chat-1", Role: "bogus", Content: "x"})
	assert.Error(t, err)
}

func TestEmptyContentIsValid(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	// Pure tool-invocation turns flatten to an empty content string.
	_, err := repo.Create(context.Background(), &domain.Message{ChatID: "chat-1", Role: domain.RoleAssistant, Content: ""})
	assert.NoError(t, err)
}

func TestDeleteByChatIDClearsOnlyThatChat(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Message{ChatID: "chat-1", Role: domain.RoleUser, Content: "gone"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Message{ChatID: "chat-2", Role: domain.RoleUser, Content: "kept"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByChatID(ctx, "chat-1"))

	count, err := repo.CountByChatID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByChatID(ctx, "chat-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
