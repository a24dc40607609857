// File: internal/handlers/projects_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/repository/project"
)

// ProjectHandler serves the project CRUD surface.
type ProjectHandler struct {
	ProjectRepo project.ProjectRepository
}

func NewProjectHandler(projectRepo project.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{ProjectRepo: projectRepo}
}

// CreateProject handles POST /api/projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, "Project name is required", http.StatusBadRequest)
		return
	}

	created, err := h.ProjectRepo.Create(r.Context(), &domain.Project{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "Could not create project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUserProjects handles GET /api/projects.
func (h *ProjectHandler) GetUserProjects(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projects, err := h.ProjectRepo.FindByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve projects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/projects/{id}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["id"]

	p, err := h.ProjectRepo.FindByID(r.Context(), projectID)
	if err != nil || p.UserID != userID {
		writeError(w, "Project not found or unauthorized", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/{id}.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["id"]

	p, err := h.ProjectRepo.FindByID(r.Context(), projectID)
	if err != nil || p.UserID != userID {
		writeError(w, "Project not found or unauthorized", http.StatusForbidden)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := h.ProjectRepo.Update(r.Context(), p); err != nil {
		writeError(w, "Could not update project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["id"]

	if err := h.ProjectRepo.Delete(r.Context(), projectID, userID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) || errors.Is(err, project.ErrUnauthorizedProjectAccess) {
			writeError(w, "Project not found or unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
