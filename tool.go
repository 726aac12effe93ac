package agentry

import (
	"context"
)

// ToolUse describes one requested tool call.
type ToolUse struct {
	// ToolUseID is the unique identifier of this logical tool call. It is
	// stable across the call's retry attempts, which makes it the correlation
	// key for per-call attempt counting.
	ToolUseID string

	// Name is the tool's registered name.
	Name string

	// Input contains the tool's arguments. Mutable in BeforeToolCallEvent.
	Input map[string]any
}

// ToolResultStatus indicates whether a tool call succeeded.
type ToolResultStatus string

const (
	// ToolResultSuccess marks a successful tool result.
	ToolResultSuccess ToolResultStatus = "success"

	// ToolResultError marks a failed tool result. Tools use this to report
	// failures as data instead of raising an error; retry policies treat
	// both forms as failures.
	ToolResultError ToolResultStatus = "error"
)

// ToolResult is the payload a tool call produced.
type ToolResult struct {
	// Status indicates success or failure.
	Status ToolResultStatus

	// Content holds the result content blocks, in order.
	Content []ContentBlock
}

// ContentBlock is one unit of textual content in a tool result or final
// invocation result.
type ContentBlock struct {
	Text string
}

// TextResult builds a successful ToolResult with a single text block.
func TextResult(text string) *ToolResult {
	return &ToolResult{
		Status:  ToolResultSuccess,
		Content: []ContentBlock{{Text: text}},
	}
}

// ErrorResult builds an error-status ToolResult with a single text block.
func ErrorResult(text string) *ToolResult {
	return &ToolResult{
		Status:  ToolResultError,
		Content: []ContentBlock{{Text: text}},
	}
}

// FirstText returns the first non-empty text block of the result, or "" if
// the result has none.
func (r *ToolResult) FirstText() string {
	if r == nil {
		return ""
	}
	for _, block := range r.Content {
		if block.Text != "" {
			return block.Text
		}
	}
	return ""
}

// Tool represents a single callable tool.
//
// Tools focus on business logic only: they accept the requested input and
// return a ToolResult (or an error for failures that never produced one).
// Scheduling, retries, and event publication are the invocation loop's job.
type Tool interface {
	// Name returns the tool's identifier used in tool calls.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's parameters.
	// Returns nil if the tool takes no parameters.
	ParameterSchema() map[string]any

	// Call executes the tool with the given input.
	Call(ctx context.Context, input map[string]any) (*ToolResult, error)
}

// ToolFunc is a convenience type for creating tools from plain functions.
type ToolFunc struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input map[string]any) (*ToolResult, error)
}

// NewToolFunc creates a Tool from a function.
func NewToolFunc(
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input map[string]any) (*ToolResult, error),
) *ToolFunc {
	return &ToolFunc{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc) Name() string {
	return t.name
}

// Description returns a human-readable description for the model.
func (t *ToolFunc) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc) ParameterSchema() map[string]any {
	return t.schema
}

// Call executes the tool function with the given input.
func (t *ToolFunc) Call(ctx context.Context, input map[string]any) (*ToolResult, error) {
	return t.fn(ctx, input)
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc)(nil)
