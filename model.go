package agentry

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Model is agentry's model interface. It wraps LangChainGo's llms.Model but
// returns a normalized response with a provider-independent stop reason and
// token usage.
//
// Implementations report throttling (rate-limit) failures as *ThrottledError
// so that retry policies can match the throttle class with errors.As.
type Model interface {
	// Generate sends the conversation to the model and returns its response.
	// The inv parameter may be nil when no invocation-scoped bookkeeping is
	// wanted.
	Generate(
		ctx context.Context,
		inv *InvocationContext,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (*ModelResponse, error)
}

// StopReason is the normalized reason a model stopped generating.
type StopReason string

const (
	// StopReasonEndTurn means the model finished its turn normally.
	StopReasonEndTurn StopReason = "end_turn"

	// StopReasonToolUse means the model stopped to request tool calls.
	StopReasonToolUse StopReason = "tool_use"

	// StopReasonMaxTokens means the response was truncated at the output
	// token limit. Tool calls in such a response may be incomplete; see the
	// recovery package.
	StopReasonMaxTokens StopReason = "max_tokens"
)

// ModelResponse is the normalized response from a Generate call.
type ModelResponse struct {
	// Content is the textual content of the response.
	Content string

	// StopReason is why the model stopped generating.
	StopReason StopReason

	// ToolCalls lists the tool calls the model requested, in order.
	// Empty when the model produced a final answer.
	ToolCalls []*ToolUse

	// Usage contains normalized token counts for the call.
	Usage Usage
}

// Usage contains normalized token counts for a single model call.
type Usage struct {
	// InputTokens is the number of prompt tokens consumed.
	InputTokens int

	// OutputTokens is the number of completion tokens generated.
	OutputTokens int

	// TotalTokens is InputTokens + OutputTokens unless the provider reports
	// a total directly.
	TotalTokens int
}
