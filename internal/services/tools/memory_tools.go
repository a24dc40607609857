// File: internal/services/tools/memory_tools.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/repository/memory"
)

// memoryView is the model-facing projection of a stored memory.
type memoryView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Tags       []string  `json:"tags"`
	Importance int       `json:"importance"`
	ProjectID  string    `json:"projectId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func viewOfMemory(m *domain.Memory) memoryView {
	v := memoryView{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		Summary:    m.Summary,
		Tags:       decodeTags(m.Tags),
		Importance: m.Importance,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.ProjectID != nil {
		v.ProjectID = *m.ProjectID
	}
	return v
}

func decodeTags(raw datatypes.JSON) []string {
	tags := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &tags)
	}
	return tags
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return datatypes.JSON(raw)
}

// resolveProjectID prefers an explicit argument over the chat's project.
func resolveProjectID(argProjectID string, req RequestContext) string {
	if argProjectID != "" {
		return argProjectID
	}
	return req.ProjectID
}

func (r *Registry) createMemoryTool() Tool {
	type args struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Summary    string   `json:"summary"`
		Tags       []string `json:"tags"`
		Importance int      `json:"importance"`
		ProjectID  string   `json:"projectId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "createMemory",
			Description: "Store a new memory in the current project. Use this when the user shares information worth remembering for this project.",
			Parameters: objectSchema(map[string]interface{}{
				"title":      stringProp("Short title for the memory"),
				"content":    stringProp("Full content of the memory"),
				"summary":    stringProp("Optional one-line summary"),
				"tags":       stringArrayProp("Tags for categorizing the memory"),
				"importance": intProp("Importance from 1 (trivial) to 10 (critical), default 5"),
				"projectId":  stringProp("Project to store the memory in; defaults to the current chat's project"),
			}, "title", "content"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to create memories")), nil
			}

			var a args
			if err := decodeArgs("createMemory", raw, &a); err != nil {
				return nil, err
			}
			projectID := resolveProjectID(a.ProjectID, req)
			if projectID == "" {
				return failure(errors.New("no project context available; use createGeneralMemory for memories outside a project")), nil
			}

			owned, err := r.projectRepo.VerifyOwnership(ctx, projectID, auth.UserID)
			if err != nil || !owned {
				return failure(errors.New("project not found or access denied")), nil
			}

			if err := r.usageGate.CheckMemory(ctx, auth.UserID); err != nil {
				return failure(err), nil
			}

			m, err := r.memoryRepo.Create(ctx, &domain.Memory{
				UserID:     auth.UserID,
				ProjectID:  &projectID,
				Title:      a.Title,
				Content:    a.Content,
				Summary:    a.Summary,
				Tags:       encodeTags(a.Tags),
				Importance: clampImportance(a.Importance),
			})
			if err != nil {
				return failure(errors.New("failed to create memory")), nil
			}
			r.usageGate.IncrementMemory(ctx, auth.UserID)

			return map[string]interface{}{
				"success": true,
				"memory":  viewOfMemory(m),
				"message": fmt.Sprintf("Memory %q created successfully", m.Title),
			}, nil
		},
	}
}

func (r *Registry) getMemoriesTool() Tool {
	type args struct {
		ProjectID string `json:"projectId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "getMemories",
			Description: "Retrieve all memories stored in the current project, ordered by importance.",
			Parameters: objectSchema(map[string]interface{}{
				"projectId": stringProp("Project to read memories from; defaults to the current chat's project"),
			}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view memories")), nil
			}

			var a args
			if err := decodeArgs("getMemories", raw, &a); err != nil {
				return nil, err
			}
			projectID := resolveProjectID(a.ProjectID, req)
			if projectID == "" {
				return failure(errors.New("no project context available")), nil
			}

			memories, err := r.memoryRepo.FindByProjectID(ctx, projectID, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve memories")), nil
			}

			views := make([]memoryView, 0, len(memories))
			for i := range memories {
				views = append(views, viewOfMemory(&memories[i]))
			}
			return map[string]interface{}{
				"success":  true,
				"memories": views,
				"count":    len(views),
			}, nil
		},
	}
}

func (r *Registry) updateMemoryTool() Tool {
	type args struct {
		MemoryID   string   `json:"memoryId"`
		Title      *string  `json:"title"`
		Content    *string  `json:"content"`
		Summary    *string  `json:"summary"`
		Tags       []string `json:"tags"`
		Importance *int     `json:"importance"`
	}
	return Tool{
		Definition: Definition{
			Name:        "updateMemory",
			Description: "Update an existing memory. Only the provided fields are changed.",
			Parameters: objectSchema(map[string]interface{}{
				"memoryId":   stringProp("ID of the memory to update"),
				"title":      stringProp("New title"),
				"content":    stringProp("New content"),
				"summary":    stringProp("New summary"),
				"tags":       stringArrayProp("Replacement tag list"),
				"importance": intProp("New importance from 1 to 10"),
			}, "memoryId"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to update memories")), nil
			}

			var a args
			if err := decodeArgs("updateMemory", raw, &a); err != nil {
				return nil, err
			}
			if a.MemoryID == "" {
				return nil, NewInvalidArgumentsError("updateMemory")
			}

			m, err := r.memoryRepo.FindByID(ctx, a.MemoryID)
			if err != nil || m.UserID != auth.UserID {
				return failure(errors.New("memory not found or access denied")), nil
			}

			if a.Title != nil {
				m.Title = *a.Title
			}
			if a.Content != nil {
				m.Content = *a.Content
			}
			if a.Summary != nil {
				m.Summary = *a.Summary
			}
			if a.Tags != nil {
				m.Tags = encodeTags(a.Tags)
			}
			if a.Importance != nil {
				m.Importance = clampImportance(*a.Importance)
			}

			if err := r.memoryRepo.Update(ctx, m); err != nil {
				return failure(errors.New("failed to update memory")), nil
			}
			return map[string]interface{}{
				"success": true,
				"memory":  viewOfMemory(m),
				"message": "Memory updated successfully",
			}, nil
		},
	}
}

func (r *Registry) deleteMemoryTool() Tool {
	type args struct {
		MemoryID string `json:"memoryId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "deleteMemory",
			Description: "Permanently delete a memory. Ask the user to confirm before calling this.",
			Parameters: objectSchema(map[string]interface{}{
				"memoryId": stringProp("ID of the memory to delete"),
			}, "memoryId"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to delete memories")), nil
			}

			var a args
			if err := decodeArgs("deleteMemory", raw, &a); err != nil {
				return nil, err
			}
			if a.MemoryID == "" {
				return nil, NewInvalidArgumentsError("deleteMemory")
			}

			if err := r.memoryRepo.Delete(ctx, a.MemoryID, auth.UserID); err != nil {
				if errors.Is(err, memory.ErrMemoryNotFound) || errors.Is(err, memory.ErrUnauthorizedMemoryAccess) {
					return failure(errors.New("memory not found or access denied")), nil
				}
				return failure(errors.New("failed to delete memory")), nil
			}
			return map[string]interface{}{
				"success": true,
				"message": "Memory deleted successfully",
			}, nil
		},
	}
}

func clampImportance(v int) int {
	if v < 1 {
		return 5
	}
	if v > 10 {
		return 10
	}
	return v
}
