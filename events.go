package agentry

import "github.com/tmc/langchaingo/llms"

// -----------------------------------------------------------------------------
// Event Interface
// -----------------------------------------------------------------------------

// Event is the marker interface for all invocation lifecycle events.
//
// Events are always passed to hooks as pointers so that hooks can mutate the
// fields documented as mutable (the Retry flags, tool call input).
type Event interface {
	event()
}

// -----------------------------------------------------------------------------
// Invocation Events
// -----------------------------------------------------------------------------

// BeforeInvocationEvent is emitted once before the first model call of a
// top-level invocation.
type BeforeInvocationEvent struct{}

func (*BeforeInvocationEvent) event() {}

// AfterInvocationEvent is emitted exactly once when a top-level invocation
// ends, after all model and tool round-trips have completed, successfully or
// not. Stateful hooks (e.g. the retry strategy) use it to reset per-invocation
// state.
type AfterInvocationEvent struct {
	// Result is the final content of the invocation (nil on error).
	Result []ContentBlock

	// Err is the error the invocation ended with (nil on success).
	Err error
}

func (*AfterInvocationEvent) event() {}

// -----------------------------------------------------------------------------
// Model Call Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before each model call attempt.
type BeforeModelCallEvent struct {
	// Messages contains the conversation being sent to the model.
	Messages []llms.MessageContent
}

func (*BeforeModelCallEvent) event() {}

// AfterModelCallEvent is emitted after each model call attempt completes.
//
// Exactly one of StopResponse and Err is non-nil for a settled call. Retry is
// mutable: a hook sets it to request that the invocation loop re-issue the
// call. Hooks must treat an already-set Retry as claimed and leave the event
// alone.
type AfterModelCallEvent struct {
	// StopResponse is the successful model response (nil if the call failed).
	StopResponse *ModelResponse

	// Err is the error the call failed with (nil on success).
	Err error

	// Retry requests another attempt of the same model call.
	Retry bool
}

func (*AfterModelCallEvent) event() {}

// -----------------------------------------------------------------------------
// Tool Call Events
// -----------------------------------------------------------------------------

// BeforeToolCallEvent is emitted before each tool call attempt.
// Hooks can modify ToolUse.Input to change the tool's arguments.
type BeforeToolCallEvent struct {
	// ToolUse describes the tool call about to execute.
	ToolUse *ToolUse
}

func (*BeforeToolCallEvent) event() {}

// AfterToolCallEvent is emitted after each tool call attempt completes.
//
// ToolUse.ToolUseID is the correlation key for the logical tool call: it is
// unique per call but stable across that call's retry attempts, so attempt
// counters keyed on it track concurrent tool calls independently.
type AfterToolCallEvent struct {
	// ToolUse describes the tool call that executed.
	ToolUse *ToolUse

	// Result is the tool's result payload (nil when the tool panicked out
	// with an error instead of returning a result).
	Result *ToolResult

	// Err is the error the tool call raised (nil when the tool returned a
	// result, even an error-status one).
	Err error

	// Retry requests another attempt of the same tool call.
	Retry bool
}

func (*AfterToolCallEvent) event() {}

// -----------------------------------------------------------------------------
// Streaming Events
// -----------------------------------------------------------------------------

// ThrottleEvent is published when a model call is about to be retried after a
// throttling error. Delay is the backoff that was applied, truncated to whole
// seconds for backward compatibility with existing stream consumers.
type ThrottleEvent struct {
	// Delay is the applied backoff in whole seconds.
	Delay int
}

func (*ThrottleEvent) event() {}
