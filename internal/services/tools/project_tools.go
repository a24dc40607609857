// File: internal/services/tools/project_tools.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

type projectView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewOfProject(p *domain.Project) projectView {
	return projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *Registry) getProjectsTool() Tool {
	return Tool{
		Definition: Definition{
			Name:        "getProjects",
			Description: "List all of the user's projects.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view projects")), nil
			}

			projects, err := r.projectRepo.FindByUserID(ctx, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve projects")), nil
			}

			views := make([]projectView, 0, len(projects))
			for i := range projects {
				views = append(views, viewOfProject(&projects[i]))
			}
			return map[string]interface{}{
				"success":  true,
				"projects": views,
				"count":    len(views),
			}, nil
		},
	}
}

func (r *Registry) getProjectTool() Tool {
	type args struct {
		ProjectID string `json:"projectId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "getProject",
			Description: "Get details of a single project, defaulting to the current chat's project.",
			Parameters: objectSchema(map[string]interface{}{
				"projectId": stringProp("Project to fetch; defaults to the current chat's project"),
			}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view projects")), nil
			}

			var a args
			if err := decodeArgs("getProject", raw, &a); err != nil {
				return nil, err
			}
			projectID := resolveProjectID(a.ProjectID, req)
			if projectID == "" {
				return failure(errors.New("no project context available")), nil
			}

			p, err := r.projectRepo.FindByID(ctx, projectID)
			if err != nil || p.UserID != auth.UserID {
				return failure(errors.New("project not found or access denied")), nil
			}
			return map[string]interface{}{
				"success": true,
				"project": viewOfProject(p),
			}, nil
		},
	}
}

func (r *Registry) createProjectTool() Tool {
	type args struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return Tool{
		Definition: Definition{
			Name:        "createProject",
			Description: "Create a new project for organizing chats and memories.",
			Parameters: objectSchema(map[string]interface{}{
				"name":        stringProp("Name of the project"),
				"description": stringProp("Optional description of the project"),
			}, "name"),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to create projects")), nil
			}

			var a args
			if err := decodeArgs("createProject", raw, &a); err != nil {
				return nil, err
			}
			if a.Name == "" {
				return failure(errors.New("project name is required")), nil
			}

			p, err := r.projectRepo.Create(ctx, &domain.Project{
				UserID:      auth.UserID,
				Name:        a.Name,
				Description: a.Description,
			})
			if err != nil {
				return failure(errors.New("failed to create project")), nil
			}
			return map[string]interface{}{
				"success": true,
				"project": viewOfProject(p),
				"message": fmt.Sprintf("Project %q created successfully", p.Name),
			}, nil
		},
	}
}

func (r *Registry) updateProjectTool() Tool {
	type args struct {
		ProjectID   string  `json:"projectId"`
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	return Tool{
		Definition: Definition{
			Name:        "updateProject",
			Description: "Update a project's name or description. Only the provided fields are changed.",
			Parameters: objectSchema(map[string]interface{}{
				"projectId":   stringProp("Project to update; defaults to the current chat's project"),
				"name":        stringProp("New project name"),
				"description": stringProp("New project description"),
			}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to update projects")), nil
			}

			var a args
			if err := decodeArgs("updateProject", raw, &a); err != nil {
				return nil, err
			}
			projectID := resolveProjectID(a.ProjectID, req)
			if projectID == "" {
				return failure(errors.New("no project context available")), nil
			}

			p, err := r.projectRepo.FindByID(ctx, projectID)
			if err != nil || p.UserID != auth.UserID {
				return failure(errors.New("project not found or access denied")), nil
			}

			if a.Name != nil {
				p.Name = *a.Name
			}
			if a.Description != nil {
				p.Description = *a.Description
			}

			if err := r.projectRepo.Update(ctx, p); err != nil {
				return failure(errors.New("failed to update project")), nil
			}
			return map[string]interface{}{
				"success": true,
				"project": viewOfProject(p),
				"message": "Project updated successfully",
			}, nil
		},
	}
}
