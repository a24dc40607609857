// File: internal/services/tools/general_memory_tools.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/repository/memory"
)

// General memories are user-scoped facts with no project attachment. They
// hold preferences and background that apply across every conversation.

func (r *Registry) createGeneralMemoryTool() Tool {
	type args struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Summary    string   `json:"summary"`
		Tags       []string `json:"tags"`
		Importance int      `json:"importance"`
	}
	return Tool{
		Definition: Definition{
			Name:        "createGeneralMemory",
			Description: "Store a general memory about the user that applies across all projects, such as preferences or background.",
			Parameters: objectSchema(map[string]interface{}{
				"title":      stringProp("Short title for the memory"),
				"content":    stringProp("Full content of the memory"),
				"summary":    stringProp("Optional one-line summary"),
				"tags":       stringArrayProp("Tags for categorizing the memory"),
				"importance": intProp("Importance from 1 (trivial) to 10 (critical), default 5"),
			}, "title", "content"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to create memories")), nil
			}

			var a args
			if err := decodeArgs("createGeneralMemory", raw, &a); err != nil {
				return nil, err
			}
			if err := r.usageGate.CheckMemory(ctx, auth.UserID); err != nil {
				return failure(err), nil
			}

			m, err := r.memoryRepo.Create(ctx, &domain.Memory{
				UserID:     auth.UserID,
				ProjectID:  nil,
				Title:      a.Title,
				Content:    a.Content,
				Summary:    a.Summary,
				Tags:       encodeTags(a.Tags),
				Importance: clampImportance(a.Importance),
			})
			if err != nil {
				return failure(errors.New("failed to create general memory")), nil
			}
			r.usageGate.IncrementMemory(ctx, auth.UserID)

			return map[string]interface{}{
				"success": true,
				"memory":  viewOfMemory(m),
				"message": fmt.Sprintf("General memory %q created successfully", m.Title),
			}, nil
		},
	}
}

func (r *Registry) getGeneralMemoriesTool() Tool {
	return Tool{
		Definition: Definition{
			Name:        "getGeneralMemories",
			Description: "Retrieve all of the user's general memories, ordered by importance.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view memories")), nil
			}

			memories, err := r.memoryRepo.FindGeneralByUserID(ctx, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve general memories")), nil
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

func (r *Registry) updateGeneralMemoryTool() Tool {
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
			Name:        "updateGeneralMemory",
			Description: "Update an existing general memory. Only the provided fields are changed.",
			Parameters: objectSchema(map[string]interface{}{
				"memoryId":   stringProp("ID of the general memory to update"),
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
			if err := decodeArgs("updateGeneralMemory", raw, &a); err != nil {
				return nil, err
			}
			if a.MemoryID == "" {
				return nil, NewInvalidArgumentsError("updateGeneralMemory")
			}

			m, err := r.memoryRepo.FindByID(ctx, a.MemoryID)
			if err != nil || m.UserID != auth.UserID || !m.IsGeneral() {
				return failure(errors.New("general memory not found or access denied")), nil
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
				return failure(errors.New("failed to update general memory")), nil
			}
			return map[string]interface{}{
				"success": true,
				"memory":  viewOfMemory(m),
				"message": "General memory updated successfully",
			}, nil
		},
	}
}

func (r *Registry) deleteGeneralMemoryTool() Tool {
	type args struct {
		MemoryID string `json:"memoryId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "deleteGeneralMemory",
			Description: "Permanently delete a general memory. Ask the user to confirm before calling this.",
			Parameters: objectSchema(map[string]interface{}{
				"memoryId": stringProp("ID of the general memory to delete"),
			}, "memoryId"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to delete memories")), nil
			}

			var a args
			if err := decodeArgs("deleteGeneralMemory", raw, &a); err != nil {
				return nil, err
			}
			if a.MemoryID == "" {
				return nil, NewInvalidArgumentsError("deleteGeneralMemory")
			}

			m, err := r.memoryRepo.FindByID(ctx, a.MemoryID)
			if err != nil || m.UserID != auth.UserID || !m.IsGeneral() {
				return failure(errors.New("general memory not found or access denied")), nil
			}

			if err := r.memoryRepo.Delete(ctx, m.ID, auth.UserID); err != nil {
				if errors.Is(err, memory.ErrMemoryNotFound) || errors.Is(err, memory.ErrUnauthorizedMemoryAccess) {
					return failure(errors.New("general memory not found or access denied")), nil
				}
				return failure(errors.New("failed to delete general memory")), nil
			}
			return map[string]interface{}{
				"success": true,
				"message": "General memory deleted successfully",
			}, nil
		},
	}
}
