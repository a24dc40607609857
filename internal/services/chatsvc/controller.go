// File: internal/services/chatsvc/controller.go
package chatsvc

import (
	"context"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/repository/chat"
	"github.com/coreframe-ai/coreframe-server/internal/repository/message"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

// UsageGate admits or rejects a request against per-user quotas.
type UsageGate interface {
	Check(ctx context.Context, userID, model string, isAuthenticated bool) error
	Increment(ctx context.Context, userID, model string, isAuthenticated bool)
}

// Logger defines the logging interface used by the chat controller.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// State names one phase of a streaming chat request.
type State string

const (
	StateValidating               State = "validating"
	StateAdmitting                State = "admitting"
	StatePersistingUserTurn       State = "persisting_user_turn"
	StateStreaming                State = "streaming"
	StatePersistingAssistantTurns State = "persisting_assistant_turns"
	StateCompleted                State = "completed"
	StateFailed                   State = "failed"
)

// StreamRequest is one streaming chat request. Turns is the client's view of
// the conversation; when its last turn is a user turn, that turn is the new
// input. SystemPrompt overrides the configured default when non-empty.
type StreamRequest struct {
	ChatID       string
	Model        string
	SystemPrompt string
	Auth         domain.AuthContext
	Turns        []transcript.Turn
}

// Result reports how a streaming request ended.
type Result struct {
	State              State
	PersistedUserTurn  bool
	PersistedAssistant int
}

// Controller reconciles one streaming completion against the message store.
// Phases run in a fixed order: validate, admit through the usage gate,
// persist the user turn, stream, then persist the accumulated assistant
// turns in one pass after the stream ends. Nothing is persisted before
// admission succeeds, and nothing from the stream is persisted if the
// stream fails.
type Controller struct {
	config      *Config
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	usageGate   UsageGate
	engine      ai.CompletionEngine
	logger      Logger
}

func NewController(
	config *Config,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	usageGate UsageGate,
	engine ai.CompletionEngine,
	logger Logger,
) *Controller {
	return &Controller{
		config:      config,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		usageGate:   usageGate,
		engine:      engine,
		logger:      logger,
	}
}

// StreamChat runs one request through the full phase sequence, forwarding
// stream events to onEvent as they arrive.
func (c *Controller) StreamChat(ctx context.Context, req StreamRequest, onEvent func(ai.StreamEvent) error) (*Result, error) {
	result := &Result{State: StateValidating}

	// Validation has no side effects; a bad request touches nothing.
	if err := c.validate(req); err != nil {
		result.State = StateFailed
		return result, err
	}

	thread, err := c.chatRepo.FindByID(ctx, req.ChatID)
	if err != nil || thread.UserID != req.Auth.UserID {
		result.State = StateFailed
		return result, NewUnauthorizedError(req.Auth.UserID, req.ChatID)
	}

	model := req.Model
	if model == "" {
		model = c.config.DefaultModel
	}

	// Admission precedes every write and the engine call. A limit error
	// passes through typed so the transport can map it.
	result.State = StateAdmitting
	if err := c.usageGate.Check(ctx, req.Auth.UserID, model, req.Auth.IsAuthenticated); err != nil {
		result.State = StateFailed
		return result, err
	}

	// Only a history ending in a user turn carries new input. A trailing
	// assistant turn means a regenerate: every user turn is already stored,
	// and re-persisting one would duplicate it. Usage counts only against
	// new input. The write itself is log-only on failure: the stream still
	// runs and the client keeps its copy of the input.
	result.State = StatePersistingUserTurn
	if last := req.Turns[len(req.Turns)-1]; last.Role == domain.RoleUser {
		record := transcript.EncodeUserTurn(req.ChatID, req.Auth.UserID, last)
		if _, err := c.messageRepo.Create(ctx, &record); err != nil {
			c.logger.Warn("user turn persistence failed, continuing stream",
				"chat_id", req.ChatID, "error", err)
		} else {
			result.PersistedUserTurn = true
		}
		c.usageGate.Increment(ctx, req.Auth.UserID, model, req.Auth.IsAuthenticated)
	}

	result.State = StateStreaming
	projectID := ""
	if thread.ProjectID != nil {
		projectID = *thread.ProjectID
	}
	acc := NewAccumulator()
	systemPrompt := c.config.SystemPrompt
	if req.SystemPrompt != "" {
		systemPrompt = req.SystemPrompt
	}
	streamErr := c.engine.StreamCompletion(ctx, ai.CompletionRequest{
		Model:   model,
		System:  systemPrompt,
		History: req.Turns,
		Auth:    req.Auth,
		ToolContext: tools.RequestContext{ChatID: req.ChatID, ProjectID: projectID},
	}, func(ev ai.StreamEvent) error {
		acc.Apply(ev)
		if onEvent != nil {
			return onEvent(ev)
		}
		return nil
	})
	if streamErr != nil {
		if ai.IsCanceled(streamErr) {
			// Turns sealed before the caller went away are complete content
			// and still land; only the open, mid-stream turn is dropped.
			result.State = StatePersistingAssistantTurns
			result.PersistedAssistant = c.persistAssistantTurns(req.ChatID, acc.SealedTurns())
			result.State = StateFailed
			return result, NewStreamingError("stream", "completion stream canceled", streamErr)
		}
		// A provider failure never reached a terminal event; its turns are
		// abandoned rather than persisted.
		result.State = StateFailed
		return result, NewStreamingError("stream", "completion stream failed", streamErr)
	}

	result.State = StatePersistingAssistantTurns
	result.PersistedAssistant = c.persistAssistantTurns(req.ChatID, acc.Turns())

	result.State = StateCompleted
	return result, nil
}

func (c *Controller) validate(req StreamRequest) error {
	if req.ChatID == "" {
		return NewValidationError("validate", "chatId is required")
	}
	if req.Auth.UserID == "" {
		return NewValidationError("validate", "userId is required")
	}
	if len(req.Turns) == 0 {
		return NewValidationError("validate", "messages must not be empty")
	}
	return nil
}

// persistAssistantTurns writes each accumulated turn as its own record.
// Writes are independent: one failure is logged and the rest still land.
// Runs on a fresh context so client disconnection after the terminal stream
// event cannot abandon the batch.
func (c *Controller) persistAssistantTurns(chatID string, turns []transcript.Turn) int {
	records := transcript.EncodeAssistantTurns(chatID, turns)
	if len(records) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.PersistTimeout)
	defer cancel()

	persisted := 0
	for i, record := range records {
		if _, err := c.messageRepo.Create(ctx, record); err != nil {
			c.logger.Error("assistant turn persistence failed",
				"chat_id", chatID, "turn_index", i, "error", err)
			continue
		}
		persisted++
	}
	if persisted > 0 {
		_ = c.chatRepo.TouchUpdatedAt(ctx, chatID)
	}
	return persisted
}
