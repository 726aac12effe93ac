package hooks

import (
	"context"

	"github.com/agentry-dev/agentry"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// # Overview
//
// Registry is the central coordination point for hooks. It:
//   - Stores registered hooks in order
//   - Dispatches events to hooks that implement the relevant interface
//   - Passes the InvocationContext to hooks for access to stats and streams
//
// Hooks can implement any combination of hook interfaces - they only receive
// events for the interfaces they implement. A retry strategy, for example,
// implements AfterModelCallHook, AfterToolCallHook, and AfterInvocationHook
// and is registered once:
//
//	registry := hooks.NewRegistry()
//	registry.Register(strategy)
//	registry.Register(&LoggingHook{})
//
//	exec := executor.New(model).WithHooks(registry)
//
// # Dispatch Order
//
// Fire methods call hooks in registration order. Events carry mutable fields
// (Retry flags, tool input), so ordering decides precedence: the first hook
// to claim a retry wins, and later retry-capable hooks see the flag already
// set and stand down.
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration. Register all hooks before
// starting an invocation. Fire methods should only be called by the
// invocation loop.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. The hook can implement any
// combination of hook interfaces (AfterModelCallHook, AfterToolCallHook,
// etc.).
//
// Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// FireBeforeInvocation dispatches a BeforeInvocationEvent to all registered
// BeforeInvocationHook implementations.
func (r *Registry) FireBeforeInvocation(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeInvocationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.BeforeInvocationHook); ok {
			hook.OnBeforeInvocation(ctx, inv, event)
		}
	}
}

// FireAfterInvocation dispatches an AfterInvocationEvent to all registered
// AfterInvocationHook implementations. The invocation loop fires this exactly
// once per invocation, after all round-trips have completed.
func (r *Registry) FireAfterInvocation(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterInvocationEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.AfterInvocationHook); ok {
			hook.OnAfterInvocation(ctx, inv, event)
		}
	}
}

// FireBeforeModelCall dispatches a BeforeModelCallEvent to all registered
// BeforeModelCallHook implementations.
func (r *Registry) FireBeforeModelCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeModelCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, inv, event)
		}
	}
}

// FireAfterModelCall dispatches an AfterModelCallEvent to all registered
// AfterModelCallHook implementations.
// Hooks can set event.Retry to request another attempt of the call.
func (r *Registry) FireAfterModelCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterModelCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, inv, event)
		}
	}
}

// FireBeforeToolCall dispatches a BeforeToolCallEvent to all registered
// BeforeToolCallHook implementations.
// Hooks can modify event.ToolUse.Input to change the tool input.
func (r *Registry) FireBeforeToolCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, inv, event)
		}
	}
}

// FireAfterToolCall dispatches an AfterToolCallEvent to all registered
// AfterToolCallHook implementations.
// Hooks can set event.Retry to request another attempt of the call.
func (r *Registry) FireAfterToolCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(agentry.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, inv, event)
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Clear removes all registered hooks.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}
