// File: internal/handlers/chats_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/repository/chat"
	"github.com/coreframe-ai/coreframe-server/internal/repository/message"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

// ChatHandler serves the chat and message CRUD surface.
type ChatHandler struct {
	ChatRepo    chat.ChatRepository
	MessageRepo message.MessageRepository
	Decoder     *transcript.Decoder
}

func NewChatHandler(chatRepo chat.ChatRepository, messageRepo message.MessageRepository, decoder *transcript.Decoder) *ChatHandler {
	return &ChatHandler{ChatRepo: chatRepo, MessageRepo: messageRepo, Decoder: decoder}
}

// CreateChat handles POST /api/chats.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title     string  `json:"title"`
		Model     string  `json:"model"`
		ProjectID *string `json:"projectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ChatRepo.Create(r.Context(), &domain.Chat{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Model:     req.Model,
	})
	if err != nil {
		writeError(w, "Could not create chat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUserChats handles GET /api/chats.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatRepo.FindByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// DeleteChat handles DELETE /api/chats/{id}. Messages cascade.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	if err := h.ChatRepo.Delete(r.Context(), chatID, userID); err != nil {
		if errors.Is(err, chat.ErrChatNotFound) || errors.Is(err, chat.ErrUnauthorizedAccess) {
			writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete chat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetChatMessages handles GET /api/chats/{id}/messages. Records come back
// decoded into structured turns, in store order.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	if !h.ownsChat(w, r, chatID, userID) {
		return
	}

	records, err := h.MessageRepo.FindByChatID(r.Context(), chatID)
	if err != nil {
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Decoder.DecodeRecords(records))
}

// AppendMessage handles POST /api/chats/{id}/messages.
func (h *ChatHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	if !h.ownsChat(w, r, chatID, userID) {
		return
	}

	var turn transcript.Turn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var record domain.Message
	switch turn.Role {
	case domain.RoleUser:
		record = transcript.EncodeUserTurn(chatID, userID, turn)
	case domain.RoleAssistant:
		record = transcript.EncodeAssistantTurn(chatID, turn)
	default:
		writeError(w, "Role must be user or assistant", http.StatusBadRequest)
		return
	}

	created, err := h.MessageRepo.Create(r.Context(), &record)
	if err != nil {
		writeError(w, "Could not store message", http.StatusInternalServerError)
		return
	}
	_ = h.ChatRepo.TouchUpdatedAt(r.Context(), chatID)
	writeJSON(w, http.StatusCreated, h.Decoder.DecodeRecord(*created))
}

// BulkAppendMessages handles POST /api/chats/{id}/messages/bulk.
func (h *ChatHandler) BulkAppendMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	if !h.ownsChat(w, r, chatID, userID) {
		return
	}

	var req struct {
		Messages []transcript.Turn `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	records := make([]*domain.Message, 0, len(req.Messages))
	for _, turn := range req.Messages {
		switch turn.Role {
		case domain.RoleUser:
			record := transcript.EncodeUserTurn(chatID, userID, turn)
			records = append(records, &record)
		case domain.RoleAssistant:
			record := transcript.EncodeAssistantTurn(chatID, turn)
			records = append(records, &record)
		default:
			writeError(w, "Role must be user or assistant", http.StatusBadRequest)
			return
		}
	}

	n, err := h.MessageRepo.CreateInBatch(r.Context(), records)
	if err != nil {
		writeError(w, "Could not store messages", http.StatusInternalServerError)
		return
	}
	_ = h.ChatRepo.TouchUpdatedAt(r.Context(), chatID)
	writeJSON(w, http.StatusCreated, map[string]int{"stored": n})
}

// ClearMessages handles DELETE /api/chats/{id}/messages.
func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	if !h.ownsChat(w, r, chatID, userID) {
		return
	}

	if err := h.MessageRepo.DeleteByChatID(r.Context(), chatID); err != nil {
		writeError(w, "Could not clear messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ownsChat enforces the per-route ownership check, writing the error
// response itself when the check fails.
func (h *ChatHandler) ownsChat(w http.ResponseWriter, r *http.Request, chatID, userID string) bool {
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	owned, err := h.ChatRepo.VerifyOwnership(r.Context(), chatID, userID)
	if err != nil {
		writeError(w, "Could not verify chat ownership", http.StatusInternalServerError)
		return false
	}
	if !owned {
		writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
		return false
	}
	return true
}
