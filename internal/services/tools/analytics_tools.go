// File: internal/services/tools/analytics_tools.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

func (r *Registry) getMemoryStatsTool() Tool {
	type args struct {
		ProjectID string `json:"projectId"`
	}
	return Tool{
		Definition: Definition{
			Name:        "getMemoryStats",
			Description: "Get counts and averages for the memories in a project.",
			Parameters: objectSchema(map[string]interface{}{
				"projectId": stringProp("Project to summarize; defaults to the current chat's project"),
			}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view memory stats")), nil
			}

			var a args
			if err := decodeArgs("getMemoryStats", raw, &a); err != nil {
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

			stats := summarizeMemories(memories)
			stats["success"] = true
			stats["projectId"] = projectID
			return stats, nil
		},
	}
}

func (r *Registry) getMemoryAnalyticsTool() Tool {
	return Tool{
		Definition: Definition{
			Name:        "getMemoryAnalytics",
			Description: "Get an account-wide breakdown of memory usage: totals, per-project distribution, and top tags.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view memory analytics")), nil
			}

			total, err := r.memoryRepo.CountByUserID(ctx, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve memory analytics")), nil
			}

			general, err := r.memoryRepo.FindGeneralByUserID(ctx, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve memory analytics")), nil
			}

			projects, err := r.projectRepo.FindByUserID(ctx, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve memory analytics")), nil
			}

			perProject := make([]map[string]interface{}, 0, len(projects))
			tagCounts := map[string]int{}
			countTags(general, tagCounts)
			for i := range projects {
				memories, err := r.memoryRepo.FindByProjectID(ctx, projects[i].ID, auth.UserID)
				if err != nil {
					continue
				}
				countTags(memories, tagCounts)
				perProject = append(perProject, map[string]interface{}{
					"projectId":   projects[i].ID,
					"projectName": projects[i].Name,
					"memoryCount": len(memories),
				})
			}

			return map[string]interface{}{
				"success":        true,
				"totalMemories":  total,
				"generalCount":   len(general),
				"projectCount":   len(projects),
				"byProject":      perProject,
				"topTags":        topTags(tagCounts, 10),
			}, nil
		},
	}
}

func (r *Registry) getCurrentProjectContextTool() Tool {
	return Tool{
		Definition: Definition{
			Name:        "getCurrentProjectContext",
			Description: "Describe the project the current chat belongs to, including its memories. Use this to orient yourself at the start of a conversation.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		Execute: func(ctx context.Context, auth domain.AuthContext, req RequestContext, raw json.RawMessage) (interface{}, error) {
			if !auth.IsAuthenticated {
				return failure(errors.New("you must be logged in to view project context")), nil
			}
			if req.ProjectID == "" {
				return map[string]interface{}{
					"success":    true,
					"hasProject": false,
					"message":    "This chat is not attached to a project.",
				}, nil
			}

			p, err := r.projectRepo.FindByID(ctx, req.ProjectID)
			if err != nil || p.UserID != auth.UserID {
				return failure(errors.New("project not found or access denied")), nil
			}

			memories, err := r.memoryRepo.FindByProjectID(ctx, req.ProjectID, auth.UserID)
			if err != nil {
				return failure(errors.New("failed to retrieve project memories")), nil
			}

			views := make([]memoryView, 0, len(memories))
			for i := range memories {
				views = append(views, viewOfMemory(&memories[i]))
			}
			return map[string]interface{}{
				"success":    true,
				"hasProject": true,
				"project":    viewOfProject(p),
				"memories":   views,
				"chatId":     req.ChatID,
			}, nil
		},
	}
}

func summarizeMemories(memories []domain.Memory) map[string]interface{} {
	if len(memories) == 0 {
		return map[string]interface{}{
			"totalMemories":     0,
			"averageImportance": 0.0,
			"topTags":           []map[string]interface{}{},
		}
	}

	importanceSum := 0
	tagCounts := map[string]int{}
	countTags(memories, tagCounts)
	for i := range memories {
		importanceSum += memories[i].Importance
	}

	return map[string]interface{}{
		"totalMemories":     len(memories),
		"averageImportance": float64(importanceSum) / float64(len(memories)),
		"topTags":           topTags(tagCounts, 10),
	}
}

func countTags(memories []domain.Memory, counts map[string]int) {
	for i := range memories {
		for _, tag := range decodeTags(memories[i].Tags) {
			counts[tag]++
		}
	}
}

// topTags returns the n most frequent tags, most frequent first. Ties break
// alphabetically so the output is stable.
func topTags(counts map[string]int, n int) []map[string]interface{} {
	type tagCount struct {
		tag   string
		count int
	}
	all := make([]tagCount, 0, len(counts))
	for tag, count := range counts {
		all = append(all, tagCount{tag, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].tag < all[j].tag
	})
	if len(all) > n {
		all = all[:n]
	}

	out := make([]map[string]interface{}, 0, len(all))
	for _, tc := range all {
		out = append(out, map[string]interface{}{"tag": tc.tag, "count": tc.count})
	}
	return out
}
