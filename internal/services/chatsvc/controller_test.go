// File: internal/services/chatsvc/controller_test.go
package chatsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

type fakeChatRepo struct {
	chat *domain.Chat
}

func (f *fakeChatRepo) Create(ctx context.Context, c *domain.Chat) (*domain.Chat, error) {
	return c, nil
}
func (f *fakeChatRepo) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	if f.chat == nil || f.chat.ID != id {
		return nil, errors.New("chat not found")
	}
	return f.chat, nil
}
func (f *fakeChatRepo) FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error) {
	return nil, nil
}
func (f *fakeChatRepo) Delete(ctx context.Context, chatID, userID string) error { return nil }
func (f *fakeChatRepo) TouchUpdatedAt(ctx context.Context, chatID string) error { return nil }
func (f *fakeChatRepo) VerifyOwnership(ctx context.Context, chatID, userID string) (bool, error) {
	return f.chat != nil && f.chat.ID == chatID && f.chat.UserID == userID, nil
}

type fakeMessageRepo struct {
	created     []domain.Message
	failForRole string
	nextID      uint
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	if f.failForRole != "" && m.Role == f.failForRole {
		return nil, errors.New("database error creating message")
	}
	f.nextID++
	m.ID = f.nextID
	f.created = append(f.created, *m)
	return m, nil
}
func (f *fakeMessageRepo) CreateInBatch(ctx context.Context, messages []*domain.Message) (int, error) {
	for _, m := range messages {
		if _, err := f.Create(ctx, m); err != nil {
			return 0, err
		}
	}
	return len(messages), nil
}
func (f *fakeMessageRepo) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	return f.created, nil
}
func (f *fakeMessageRepo) DeleteByChatID(ctx context.Context, chatID string) error { return nil }
func (f *fakeMessageRepo) CountByChatID(ctx context.Context, chatID string) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeEngine struct {
	events  []ai.StreamEvent
	err     error
	called  bool
	lastReq ai.CompletionRequest
}

func (f *fakeEngine) StreamCompletion(ctx context.Context, req ai.CompletionRequest, onEvent func(ai.StreamEvent) error) error {
	f.called = true
	f.lastReq = req
	for _, ev := range f.events {
		if err := onEvent(ev); err != nil {
			return err
		}
	}
	return f.err
}

func newTestController(chatRepo *fakeChatRepo, msgRepo *fakeMessageRepo, gate UsageGate, engine *fakeEngine) *Controller {
	return NewController(DefaultConfig(), chatRepo, msgRepo, gate, engine, noopLogger{})
}

func userRequest(chatID, userID, text string) StreamRequest {
	return StreamRequest{
		ChatID: chatID,
		Auth:   domain.AuthContext{UserID: userID, IsAuthenticated: true},
		Turns: []transcript.Turn{
			{Role: domain.RoleUser, Content: text},
		},
	}
}

func TestValidationFailureHasNoSideEffects(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), StreamRequest{}, nil)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, StateFailed, result.State)
	assert.Zero(t, gate.checked)
	assert.Empty(t, msgRepo.created)
	assert.False(t, engine.called)
}

func TestAdmissionFailureBlocksAllPersistence(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{checkErr: usage.NewLimitExceededError("user-1", "gpt-4o-mini", "Daily limit reached.")}
	engine := &fakeEngine{}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)

	require.Error(t, err)
	assert.True(t, usage.IsLimitExceeded(err))
	assert.Equal(t, StateFailed, result.State)
	assert.Empty(t, msgRepo.created, "nothing may be persisted when admission fails")
	assert.False(t, engine.called, "the engine must not run when admission fails")
	assert.Zero(t, gate.incremented)
}

func TestUserTurnWriteFailureDoesNotAbortStream(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{failForRole: domain.RoleUser}
	gate := &recordingGate{}
	engine := &fakeEngine{events: []ai.StreamEvent{
		{Type: ai.EventTextDelta, Text: "An answer."},
	}}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.False(t, result.PersistedUserTurn)
	assert.Equal(t, 1, result.PersistedAssistant)
	require.Len(t, msgRepo.created, 1)
	assert.Equal(t, domain.RoleAssistant, msgRepo.created[0].Role)
	assert.Equal(t, "An answer.", msgRepo.created[0].Content)
	assert.Equal(t, 1, gate.incremented, "usage still counts when the user turn write fails")
}

func TestMultiMessageStreamPersistsOneRecordPerTurn(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{events: []ai.StreamEvent{
		{Type: ai.EventTextDelta, Text: "Let me check."},
		{Type: ai.EventToolCall, ToolCallID: "call_1", ToolName: "getMemories", Args: []byte(`{}`)},
		{Type: ai.EventToolResult, ToolCallID: "call_1", ToolName: "getMemories", Result: []byte(`{"success":true,"count":0}`)},
		{Type: ai.EventMessageEnd},
		{Type: ai.EventTextDelta, Text: "You have no memories yet."},
	}}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "what do you remember?"), nil)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 2, result.PersistedAssistant)

	// user turn + two assistant records, in emission order
	require.Len(t, msgRepo.created, 3)
	first, second := msgRepo.created[1], msgRepo.created[2]

	assert.Equal(t, "Let me check.", first.Content)
	assert.Contains(t, string(first.Parts), "toolInvocations")
	assert.Contains(t, string(first.Parts), "getMemories")

	assert.Equal(t, "You have no memories yet.", second.Content)
}

func TestStreamFailureAbandonsAccumulatedTurns(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{
		events: []ai.StreamEvent{{Type: ai.EventTextDelta, Text: "partial"}},
		err:    errors.New("provider unavailable"),
	}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)

	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 0, result.PersistedAssistant)

	// Only the user turn landed; the partial assistant turn is abandoned.
	require.Len(t, msgRepo.created, 1)
	assert.Equal(t, domain.RoleUser, msgRepo.created[0].Role)
}

func TestRegenerateDoesNotRePersistUserTurn(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{events: []ai.StreamEvent{
		{Type: ai.EventTextDelta, Text: "A fresh answer."},
	}}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	// A history ending with an assistant turn is a regenerate: the user
	// turn is already stored and must not be written again.
	req := StreamRequest{
		ChatID: "chat-1",
		Auth:   domain.AuthContext{UserID: "user-1", IsAuthenticated: true},
		Turns: []transcript.Turn{
			{Role: domain.RoleUser, Content: "original question"},
			{Role: domain.RoleAssistant, Content: "previous answer"},
		},
	}
	result, err := ctrl.StreamChat(context.Background(), req, nil)

	require.NoError(t, err)
	assert.False(t, result.PersistedUserTurn)
	assert.Zero(t, gate.incremented, "a regenerate is not new input and does not consume quota")
	require.Len(t, msgRepo.created, 1)
	assert.Equal(t, domain.RoleAssistant, msgRepo.created[0].Role)
	assert.Equal(t, "A fresh answer.", msgRepo.created[0].Content)
}

func TestCancellationPersistsSealedTurnsOnly(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{
		events: []ai.StreamEvent{
			{Type: ai.EventTextDelta, Text: "A complete answer."},
			{Type: ai.EventMessageEnd},
			{Type: ai.EventTextDelta, Text: "a second answer cut"},
		},
		err: context.Canceled,
	}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	result, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)

	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 1, result.PersistedAssistant)

	// user turn + the sealed assistant turn; the mid-stream one is dropped
	require.Len(t, msgRepo.created, 2)
	assert.Equal(t, domain.RoleAssistant, msgRepo.created[1].Role)
	assert.Equal(t, "A complete answer.", msgRepo.created[1].Content)
}

func TestCallerSystemPromptOverridesDefault(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	engine := &fakeEngine{events: []ai.StreamEvent{{Type: ai.EventTextDelta, Text: "ok"}}}
	ctrl := newTestController(chatRepo, &fakeMessageRepo{}, &recordingGate{}, engine)

	req := userRequest("chat-1", "user-1", "hello")
	req.SystemPrompt = "You are a pirate."
	_, err := ctrl.StreamChat(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "You are a pirate.", engine.lastReq.System)

	_, err = ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().SystemPrompt, engine.lastReq.System)
}

func TestOwnershipMismatchIsUnauthorized(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "someone-else"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	_, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), nil)

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Empty(t, msgRepo.created)
	assert.Zero(t, gate.checked)
}

func TestEventsForwardedToCaller(t *testing.T) {
	chatRepo := &fakeChatRepo{chat: &domain.Chat{ID: "chat-1", UserID: "user-1"}}
	msgRepo := &fakeMessageRepo{}
	gate := &recordingGate{}
	engine := &fakeEngine{events: []ai.StreamEvent{
		{Type: ai.EventReasoningDelta, Text: "thinking"},
		{Type: ai.EventTextDelta, Text: "done"},
	}}
	ctrl := newTestController(chatRepo, msgRepo, gate, engine)

	var seen []ai.EventType
	_, err := ctrl.StreamChat(context.Background(), userRequest("chat-1", "user-1", "hello"), func(ev ai.StreamEvent) error {
		seen = append(seen, ev.Type)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []ai.EventType{ai.EventReasoningDelta, ai.EventTextDelta}, seen)
}

// recordingGate counts gate traffic and optionally rejects admission.
type recordingGate struct {
	checkErr    error
	checked     int
	incremented int
}

func (g *recordingGate) Check(ctx context.Context, userID, model string, isAuthenticated bool) error {
	g.checked++
	return g.checkErr
}

func (g *recordingGate) Increment(ctx context.Context, userID, model string, isAuthenticated bool) {
	g.incremented++
}
