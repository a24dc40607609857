// File: internal/handlers/stream_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/chatsvc"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
)

// StreamHandler serves the streaming chat endpoint. Failures before the
// first stream event produce a single JSON error body; failures after it
// arrive as an inline error frame on the open stream.
type StreamHandler struct {
	Controller *chatsvc.Controller
}

func NewStreamHandler(controller *chatsvc.Controller) *StreamHandler {
	return &StreamHandler{Controller: controller}
}

type streamChatRequest struct {
	Messages        []transcript.Turn `json:"messages"`
	ChatID          string            `json:"chatId"`
	UserID          string            `json:"userId"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	Model           string            `json:"model"`
	SystemPrompt    string            `json:"systemPrompt"`
}

// HandleChat handles POST /api/chat.
func (h *StreamHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req streamChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sse := newSSEWriter(w)
	result, err := h.Controller.StreamChat(r.Context(), chatsvc.StreamRequest{
		ChatID:       req.ChatID,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Auth:         domain.AuthContext{UserID: req.UserID, IsAuthenticated: req.IsAuthenticated},
		Turns:        req.Messages,
	}, sse.send)

	if err != nil {
		if sse.started {
			// The stream is already open; the JSON error channel is gone.
			log.Printf("[StreamHandler] Stream failed mid-flight for chat %s: %v", req.ChatID, err)
			sse.sendFrame(map[string]interface{}{"type": "error", "error": "The response stream was interrupted. Please try again."})
			return
		}
		h.writeFailure(w, req.ChatID, err)
		return
	}

	sse.sendFrame(map[string]interface{}{
		"type":               "done",
		"persistedUserTurn":  result.PersistedUserTurn,
		"persistedAssistant": result.PersistedAssistant,
	})
}

func (h *StreamHandler) writeFailure(w http.ResponseWriter, chatID string, err error) {
	var limitErr *usage.LimitExceededError
	switch {
	case chatsvc.IsValidation(err):
		writeError(w, err.Error(), http.StatusBadRequest)
	case chatsvc.IsUnauthorized(err):
		writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
	case errors.As(err, &limitErr):
		status := http.StatusTooManyRequests
		if limitErr.Type == usage.ErrTypeAuthRequired {
			status = http.StatusUnauthorized
		}
		writeError(w, limitErr.Message, status)
	default:
		log.Printf("[StreamHandler] Chat %s failed: %v", chatID, err)
		writeError(w, "Error processing chat", http.StatusInternalServerError)
	}
}

// sseWriter lazily switches the response into an event stream on the first
// frame.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	flusher, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: flusher}
}

func (s *sseWriter) send(ev ai.StreamEvent) error {
	frame := map[string]interface{}{}
	switch ev.Type {
	case ai.EventTextDelta:
		frame["type"] = "text"
		frame["content"] = ev.Text
	case ai.EventReasoningDelta:
		frame["type"] = "reasoning"
		frame["content"] = ev.Text
	case ai.EventToolCall:
		frame["type"] = "tool-call"
		frame["toolCallId"] = ev.ToolCallID
		frame["toolName"] = ev.ToolName
		frame["args"] = ev.Args
	case ai.EventToolResult:
		frame["type"] = "tool-result"
		frame["toolCallId"] = ev.ToolCallID
		frame["toolName"] = ev.ToolName
		frame["result"] = ev.Result
	case ai.EventMessageEnd:
		frame["type"] = "message-end"
	case ai.EventError:
		frame["type"] = "error"
		frame["error"] = ev.Message
	default:
		return nil
	}
	return s.sendFrame(frame)
}

func (s *sseWriter) sendFrame(frame map[string]interface{}) error {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	raw, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", raw); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
