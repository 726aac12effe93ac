package agentry

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe and intercept an invocation at well-defined points. To use
// hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register the value with hooks.Registry
//  3. Pass the registry to the executor
//
// A single value can implement any combination of interfaces; the registry
// detects which ones and only delivers matching events.
//
// Example:
//
//	type LoggingHook struct{}
//
//	func (h *LoggingHook) OnAfterToolCall(
//	    ctx context.Context, inv *agentry.InvocationContext, e *agentry.AfterToolCallEvent,
//	) {
//	    log.Printf(ctx, "tool %s: retry=%v", e.ToolUse.Name, e.Retry)
//	}
//
// # Execution Order
//
// Hooks fire in registration order. Order matters for retry-capable hooks:
// the first hook to set an event's Retry flag claims the retry, and
// well-behaved hooks skip events whose Retry flag is already set.
//
// # Error Handling
//
// Hooks do not return errors. Decisions are communicated through the mutable
// event fields; anything else a hook wants to surface goes through its own
// channels (logs, published events).

// BeforeInvocationHook is notified once before an invocation's first model call.
type BeforeInvocationHook interface {
	OnBeforeInvocation(ctx context.Context, inv *InvocationContext, event *BeforeInvocationEvent)
}

// AfterInvocationHook is notified exactly once when an invocation ends.
// This always fires if the invocation started, even on error, making it the
// safe place to reset per-invocation state.
type AfterInvocationHook interface {
	OnAfterInvocation(ctx context.Context, inv *InvocationContext, event *AfterInvocationEvent)
}

// BeforeModelCallHook is notified before each model call attempt.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, inv *InvocationContext, event *BeforeModelCallEvent)
}

// AfterModelCallHook is notified after each model call attempt.
// Setting event.Retry requests that the loop re-issue the call.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, inv *InvocationContext, event *AfterModelCallEvent)
}

// BeforeToolCallHook is notified before each tool call attempt.
// The hook can modify event.ToolUse.Input to change the tool's arguments.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, inv *InvocationContext, event *BeforeToolCallEvent)
}

// AfterToolCallHook is notified after each tool call attempt.
// Setting event.Retry requests that the loop re-issue the call.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, inv *InvocationContext, event *AfterToolCallEvent)
}
