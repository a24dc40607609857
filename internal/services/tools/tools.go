// File: internal/services/tools/tools.go
package tools

import (
	"context"
	"encoding/json"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/repository/memory"
	"github.com/coreframe-ai/coreframe-server/internal/repository/project"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
)

// Logger defines the logging interface used by the tool registry.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// RequestContext is the narrow read-only view of the current chat a tool may
// consult. It lets an invocation resolve "current project" without
// re-deriving it; it is not a persistence interface.
type RequestContext struct {
	ChatID    string
	ProjectID string
}

// Definition describes one capability exposed to the completion engine.
// Parameters is a JSON Schema object.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Handler executes one tool call. Domain-level failures come back as
// {success:false, error} result objects the model can read; a returned Go
// error means the execution itself broke.
type Handler func(ctx context.Context, auth domain.AuthContext, req RequestContext, args json.RawMessage) (interface{}, error)

// Tool pairs a definition with its handler.
type Tool struct {
	Definition
	Execute Handler
}

// Registry holds the full capability set: project memories, general
// memories, projects, and analytics/context.
type Registry struct {
	memoryRepo  memory.MemoryRepository
	projectRepo project.ProjectRepository
	usageGate   *usage.Service
	logger      Logger

	tools []Tool
	index map[string]int
}

func NewRegistry(
	memoryRepo memory.MemoryRepository,
	projectRepo project.ProjectRepository,
	usageGate *usage.Service,
	logger Logger,
) *Registry {
	r := &Registry{
		memoryRepo:  memoryRepo,
		projectRepo: projectRepo,
		usageGate:   usageGate,
		logger:      logger,
		index:       make(map[string]int),
	}

	r.register(r.createMemoryTool())
	r.register(r.getMemoriesTool())
	r.register(r.updateMemoryTool())
	r.register(r.deleteMemoryTool())
	r.register(r.createGeneralMemoryTool())
	r.register(r.getGeneralMemoriesTool())
	r.register(r.updateGeneralMemoryTool())
	r.register(r.deleteGeneralMemoryTool())
	r.register(r.getProjectsTool())
	r.register(r.getProjectTool())
	r.register(r.createProjectTool())
	r.register(r.updateProjectTool())
	r.register(r.getMemoryStatsTool())
	r.register(r.getMemoryAnalyticsTool())
	r.register(r.getCurrentProjectContextTool())

	return r
}

func (r *Registry) register(t Tool) {
	r.index[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
}

// Tools returns the capability set in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Execute dispatches one tool call and returns the serialized result object.
// Unknown names and malformed arguments surface as typed errors so the
// stream layer can translate them to their fixed user-facing messages.
func (r *Registry) Execute(ctx context.Context, auth domain.AuthContext, req RequestContext, name string, args json.RawMessage) (json.RawMessage, error) {
	idx, ok := r.index[name]
	if !ok {
		return nil, NewUnknownToolError(name)
	}

	if len(args) > 0 && !json.Valid(args) {
		return nil, NewInvalidArgumentsError(name)
	}

	result, err := r.tools[idx].Execute(ctx, auth, req, args)
	if err != nil {
		r.logger.Error("tool execution failed", "tool", name, "error", err)
		return nil, NewExecutionError(name, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, NewExecutionError(name, err)
	}
	return raw, nil
}

// failure builds the model-facing error result shared by every tool.
func failure(err error) map[string]interface{} {
	msg := "Unknown error occurred"
	if err != nil {
		msg = err.Error()
	}
	return map[string]interface{}{"success": false, "error": msg}
}

// decodeArgs unmarshals tool arguments, reporting malformed input as an
// invalid-arguments condition.
func decodeArgs(name string, args json.RawMessage, dest interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dest); err != nil {
		return NewInvalidArgumentsError(name)
	}
	return nil
}

// Small JSON Schema builders shared by the tool definitions.

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func intProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func stringArrayProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": desc,
	}
}
