// File: internal/handlers/export_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"html"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/repository/chat"
	"github.com/coreframe-ai/coreframe-server/internal/repository/message"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
)

// ExportHandler renders a chat transcript as a standalone HTML page.
// Assistant markdown goes through goldmark; user text is escaped verbatim.
type ExportHandler struct {
	ChatRepo    chat.ChatRepository
	MessageRepo message.MessageRepository
	Decoder     *transcript.Decoder
	markdown    goldmark.Markdown
}

func NewExportHandler(chatRepo chat.ChatRepository, messageRepo message.MessageRepository, decoder *transcript.Decoder) *ExportHandler {
	return &ExportHandler{
		ChatRepo:    chatRepo,
		MessageRepo: messageRepo,
		Decoder:     decoder,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// ExportChat handles GET /api/chats/{id}/export.
func (h *ExportHandler) ExportChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	thread, err := h.ChatRepo.FindByID(r.Context(), chatID)
	if err != nil || thread.UserID != userID {
		writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
		return
	}

	records, err := h.MessageRepo.FindByChatID(r.Context(), chatID)
	if err != nil {
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	title := thread.Title
	if title == "" {
		title = "Chat transcript"
	}
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", html.EscapeString(title))
	fmt.Fprintf(&page, "<h1>%s</h1>\n", html.EscapeString(title))

	for _, turn := range h.Decoder.DecodeRecords(records) {
		fmt.Fprintf(&page, "<section class=\"turn turn-%s\">\n", html.EscapeString(turn.Role))
		fmt.Fprintf(&page, "<h2>%s</h2>\n", html.EscapeString(turn.Role))

		text := turn.TextContent()
		if turn.Role == domain.RoleAssistant {
			var rendered bytes.Buffer
			if err := h.markdown.Convert([]byte(text), &rendered); err != nil {
				fmt.Fprintf(&page, "<pre>%s</pre>\n", html.EscapeString(text))
			} else {
				page.Write(rendered.Bytes())
			}
		} else {
			fmt.Fprintf(&page, "<p>%s</p>\n", html.EscapeString(text))
		}

		for _, inv := range turn.ToolInvocations {
			fmt.Fprintf(&page, "<p class=\"tool\"><em>tool: %s</em></p>\n", html.EscapeString(inv.ToolName))
		}
		page.WriteString("</section>\n")
	}
	page.WriteString("</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page.Bytes())
}
