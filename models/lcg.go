// Package models adapts LangChainGo models to agentry's Model interface.
package models

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/agentry-dev/agentry"
)

// LangChain wraps an llms.Model and implements agentry's Model interface.
// It normalizes stop reasons and token usage across providers and classifies
// rate-limit failures as *agentry.ThrottledError so retry policies can match
// them with errors.As.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLangChain(llm).WithModelName("gpt-4o")
//	resp, err := model.Generate(ctx, inv, messages)
type LangChain struct {
	model     llms.Model
	modelName string
}

// NewLangChain creates a LangChain adapter wrapping the given llms.Model.
func NewLangChain(model llms.Model) *LangChain {
	return &LangChain{model: model}
}

// WithModelName sets the model name passed on each call.
// Returns the model for chaining.
func (m *LangChain) WithModelName(name string) *LangChain {
	m.modelName = name
	return m
}

// Unwrap returns the underlying llms.Model.
func (m *LangChain) Unwrap() llms.Model {
	return m.model
}

// Generate implements agentry.Model.Generate.
func (m *LangChain) Generate(
	ctx context.Context,
	inv *agentry.InvocationContext,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*agentry.ModelResponse, error) {
	if m.modelName != "" {
		options = append([]llms.CallOption{llms.WithModel(m.modelName)}, options...)
	}

	raw, err := m.model.GenerateContent(ctx, messages, options...)
	if err != nil {
		if isThrottle(err) {
			return nil, agentry.NewThrottledError("provider rate limited", err)
		}
		return nil, err
	}
	return convertResponse(raw), nil
}

// convertResponse normalizes an llms.ContentResponse.
func convertResponse(raw *llms.ContentResponse) *agentry.ModelResponse {
	resp := &agentry.ModelResponse{StopReason: agentry.StopReasonEndTurn}
	if len(raw.Choices) == 0 {
		return resp
	}

	choice := raw.Choices[0]
	resp.Content = choice.Content

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		use := &agentry.ToolUse{
			ToolUseID: tc.ID,
			Name:      tc.FunctionCall.Name,
		}
		if args := tc.FunctionCall.Arguments; args != "" {
			var input map[string]any
			if json.Unmarshal([]byte(args), &input) == nil {
				use.Input = input
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, use)
	}

	resp.StopReason = normalizeStopReason(choice.StopReason, len(resp.ToolCalls) > 0)

	if choice.GenerationInfo != nil {
		resp.Usage = extractUsage(choice.GenerationInfo)
	}
	return resp
}

// normalizeStopReason maps provider stop reasons onto agentry's three.
// Providers that report no stop reason fall back to the tool-call shape.
func normalizeStopReason(reason string, hasToolCalls bool) agentry.StopReason {
	switch strings.ToLower(reason) {
	case "stop", "end_turn", "stop_sequence":
		return agentry.StopReasonEndTurn
	case "tool_calls", "tool_use", "function_call":
		return agentry.StopReasonToolUse
	case "length", "max_tokens":
		return agentry.StopReasonMaxTokens
	}
	if hasToolCalls {
		return agentry.StopReasonToolUse
	}
	return agentry.StopReasonEndTurn
}

// extractUsage normalizes token counts from GenerationInfo.
// Handles the different key names used by different providers.
func extractUsage(info map[string]any) agentry.Usage {
	usage := agentry.Usage{}

	// OpenAI / Ollama use PromptTokens, Anthropic InputTokens,
	// Bedrock input_tokens.
	for _, key := range []string{"PromptTokens", "InputTokens", "input_tokens"} {
		if v := getIntFromMap(info, key); v > 0 {
			usage.InputTokens = v
			break
		}
	}
	for _, key := range []string{"CompletionTokens", "OutputTokens", "output_tokens"} {
		if v := getIntFromMap(info, key); v > 0 {
			usage.OutputTokens = v
			break
		}
	}
	for _, key := range []string{"TotalTokens", "total_tokens"} {
		if v := getIntFromMap(info, key); v > 0 {
			usage.TotalTokens = v
			break
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return usage
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LangChain implements agentry.Model.
var _ agentry.Model = (*LangChain)(nil)
