// File: internal/handlers/memories_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/repository/memory"
	"github.com/coreframe-ai/coreframe-server/internal/repository/project"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
)

// MemoryHandler serves project and general memory CRUD. Creation counts
// against the daily memory quota.
type MemoryHandler struct {
	MemoryRepo  memory.MemoryRepository
	ProjectRepo project.ProjectRepository
	UsageGate   *usage.Service
}

func NewMemoryHandler(memoryRepo memory.MemoryRepository, projectRepo project.ProjectRepository, usageGate *usage.Service) *MemoryHandler {
	return &MemoryHandler{MemoryRepo: memoryRepo, ProjectRepo: projectRepo, UsageGate: usageGate}
}

type memoryRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Importance int      `json:"importance"`
}

func (req *memoryRequest) toDomain(userID string, projectID *string) *domain.Memory {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)

	importance := req.Importance
	if importance < 1 {
		importance = 5
	} else if importance > 10 {
		importance = 10
	}

	return &domain.Memory{
		UserID:     userID,
		ProjectID:  projectID,
		Title:      req.Title,
		Content:    req.Content,
		Summary:    req.Summary,
		Tags:       datatypes.JSON(raw),
		Importance: importance,
	}
}

// CreateProjectMemory handles POST /api/projects/{id}/memories.
func (h *MemoryHandler) CreateProjectMemory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["id"]

	owned, err := h.ProjectRepo.VerifyOwnership(r.Context(), projectID, userID)
	if err != nil || !owned {
		writeError(w, "Project not found or unauthorized", http.StatusForbidden)
		return
	}

	h.createMemory(w, r, userID, &projectID)
}

// CreateGeneralMemory handles POST /api/memories.
func (h *MemoryHandler) CreateGeneralMemory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.createMemory(w, r, userID, nil)
}

func (h *MemoryHandler) createMemory(w http.ResponseWriter, r *http.Request, userID string, projectID *string) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Content == "" {
		writeError(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	if err := h.UsageGate.CheckMemory(r.Context(), userID); err != nil {
		var limitErr *usage.LimitExceededError
		if errors.As(err, &limitErr) {
			writeError(w, limitErr.Message, http.StatusTooManyRequests)
			return
		}
		writeError(w, "Could not check memory quota", http.StatusInternalServerError)
		return
	}

	created, err := h.MemoryRepo.Create(r.Context(), req.toDomain(userID, projectID))
	if err != nil {
		writeError(w, "Could not create memory", http.StatusInternalServerError)
		return
	}
	h.UsageGate.IncrementMemory(r.Context(), userID)
	writeJSON(w, http.StatusCreated, created)
}

// GetProjectMemories handles GET /api/projects/{id}/memories.
func (h *MemoryHandler) GetProjectMemories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["id"]

	memories, err := h.MemoryRepo.FindByProjectID(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, "Could not retrieve memories", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// GetGeneralMemories handles GET /api/memories.
func (h *MemoryHandler) GetGeneralMemories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memories, err := h.MemoryRepo.FindGeneralByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve memories", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// UpdateMemory handles PUT /api/memories/{id}.
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	memoryID := mux.Vars(r)["id"]

	m, err := h.MemoryRepo.FindByID(r.Context(), memoryID)
	if err != nil || m.UserID != userID {
		writeError(w, "Memory not found or unauthorized", http.StatusForbidden)
		return
	}

	var req struct {
		Title      *string  `json:"title"`
		Content    *string  `json:"content"`
		Summary    *string  `json:"summary"`
		Tags       []string `json:"tags"`
		Importance *int     `json:"importance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Content != nil {
		m.Content = *req.Content
	}
	if req.Summary != nil {
		m.Summary = *req.Summary
	}
	if req.Tags != nil {
		raw, _ := json.Marshal(req.Tags)
		m.Tags = datatypes.JSON(raw)
	}
	if req.Importance != nil && *req.Importance >= 1 && *req.Importance <= 10 {
		m.Importance = *req.Importance
	}

	if err := h.MemoryRepo.Update(r.Context(), m); err != nil {
		writeError(w, "Could not update memory", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMemory handles DELETE /api/memories/{id}.
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	memoryID := mux.Vars(r)["id"]

	if err := h.MemoryRepo.Delete(r.Context(), memoryID, userID); err != nil {
		if errors.Is(err, memory.ErrMemoryNotFound) || errors.Is(err, memory.ErrUnauthorizedMemoryAccess) {
			writeError(w, "Memory not found or unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete memory", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
