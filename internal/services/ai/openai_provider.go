// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"encoding/json"
	"io"
	"sort"

	openai "github.com/sashabaranov/go-openai"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
)

// OpenAIProvider drives streaming completions with a bounded tool-calling
// loop. One StreamCompletion call may span several provider round trips when
// the model requests tools; each round trip is one assistant message in the
// event stream.
type OpenAIProvider struct {
	config   *Config
	client   *openai.Client
	registry *tools.Registry
	logger   Logger
}

func NewOpenAIProvider(config *Config, registry *tools.Registry, logger Logger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config:   config,
		client:   openai.NewClientWithConfig(clientConfig),
		registry: registry,
		logger:   logger,
	}
}

// pendingCall is a tool call under accumulation from stream deltas.
type pendingCall struct {
	index int
	id    string
	name  string
	args  []byte
}

func (p *OpenAIProvider) StreamCompletion(ctx context.Context, req CompletionRequest, onEvent func(StreamEvent) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.StreamTimeout)
	defer cancel()

	messages := p.buildMessages(req)
	toolDefs := p.buildToolDefs()

	for step := 0; step < p.config.MaxSteps; step++ {
		content, calls, err := p.streamStep(ctx, req.Model, messages, toolDefs, onEvent)
		if err != nil {
			return err
		}

		if len(calls) == 0 {
			return nil
		}

		// Feed the assistant turn and every tool result back before the
		// next round trip.
		assistantMsg := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: content,
		}
		for _, call := range calls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, openai.ToolCall{
				ID:   call.id,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.name,
					Arguments: string(call.args),
				},
			})
		}
		messages = append(messages, assistantMsg)

		for _, call := range calls {
			if err := onEvent(StreamEvent{
				Type:       EventToolCall,
				ToolCallID: call.id,
				ToolName:   call.name,
				Args:       json.RawMessage(call.args),
			}); err != nil {
				return err
			}

			result, execErr := p.registry.Execute(ctx, req.Auth, req.ToolContext, call.name, json.RawMessage(call.args))
			if execErr != nil {
				if IsCanceled(execErr) {
					return execErr
				}
				p.logger.Error("tool dispatch failed", "tool", call.name, "error", execErr)
				return onEvent(StreamEvent{Type: EventError, Message: ToolUserMessage(execErr)})
			}

			if err := onEvent(StreamEvent{
				Type:       EventToolResult,
				ToolCallID: call.id,
				ToolName:   call.name,
				Result:     result,
			}); err != nil {
				return err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.id,
				Content:    string(result),
			})
		}

		if err := onEvent(StreamEvent{Type: EventMessageEnd}); err != nil {
			return err
		}
	}

	p.logger.Warn("completion reached step ceiling", "model", req.Model, "maxSteps", p.config.MaxSteps)
	return nil
}

// streamStep runs one provider round trip, forwarding text and reasoning
// deltas and accumulating tool-call fragments until the stream closes.
func (p *OpenAIProvider) streamStep(
	ctx context.Context,
	model string,
	messages []openai.ChatCompletionMessage,
	toolDefs []openai.Tool,
	onEvent func(StreamEvent) error,
) (string, []pendingCall, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Tools:       toolDefs,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	})
	if err != nil {
		return "", nil, NewProviderError("streaming", "failed to create stream", err)
	}
	defer stream.Close()

	var content string
	pending := map[int]*pendingCall{}

	for {
		response, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			if IsCanceled(err) {
				return "", nil, err
			}
			return "", nil, NewProviderError("streaming", "stream receive error", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta

		if delta.ReasoningContent != "" {
			if err := onEvent(StreamEvent{Type: EventReasoningDelta, Text: delta.ReasoningContent}); err != nil {
				return "", nil, err
			}
		}
		if delta.Content != "" {
			content += delta.Content
			if err := onEvent(StreamEvent{Type: EventTextDelta, Text: delta.Content}); err != nil {
				return "", nil, err
			}
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			call, ok := pending[idx]
			if !ok {
				call = &pendingCall{index: idx}
				pending[idx] = call
			}
			if tc.ID != "" {
				call.id = tc.ID
			}
			if tc.Function.Name != "" {
				call.name = tc.Function.Name
			}
			call.args = append(call.args, tc.Function.Arguments...)
		}
	}

	calls := make([]pendingCall, 0, len(pending))
	for _, call := range pending {
		calls = append(calls, *call)
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].index < calls[j].index })
	return content, calls, nil
}

func (p *OpenAIProvider) buildMessages(req CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, turn := range req.History {
		var role string
		switch turn.Role {
		case domain.RoleUser:
			role = openai.ChatMessageRoleUser
		case domain.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			continue
		}
		content := turn.TextContent()
		if content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: content,
		})
	}
	return messages
}

func (p *OpenAIProvider) buildToolDefs() []openai.Tool {
	defs := p.registry.Tools()
	out := make([]openai.Tool, 0, len(defs))
	for _, t := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
