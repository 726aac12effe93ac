// Package hooks provides a registry for managing invocation lifecycle hooks.
//
// Hooks allow you to observe and intercept events during an agent invocation.
// Each hook interface corresponds to a specific event type - implement only
// the interfaces you need.
//
// # Hook Interfaces
//
// Invocation lifecycle hooks:
//   - [agentry.BeforeInvocationHook] - Called once before the first model call
//   - [agentry.AfterInvocationHook] - Called exactly once when the invocation ends
//
// Model call hooks:
//   - [agentry.BeforeModelCallHook] - Called before each model call attempt
//   - [agentry.AfterModelCallHook] - Called after each model call attempt
//     (can set event.Retry)
//
// Tool call hooks:
//   - [agentry.BeforeToolCallHook] - Called before each tool call attempt
//     (can modify the input)
//   - [agentry.AfterToolCallHook] - Called after each tool call attempt
//     (can set event.Retry)
//
// # Creating a Hook
//
// Create a hook by implementing any combination of interfaces:
//
//	type MetricsHook struct{}
//
//	func (h *MetricsHook) OnAfterToolCall(
//	    ctx context.Context,
//	    inv *agentry.InvocationContext,
//	    event *agentry.AfterToolCallEvent,
//	) {
//	    metrics.RecordToolCall(event.ToolUse.Name, event.Retry)
//	}
//
//	// Compile-time check
//	var _ agentry.AfterToolCallHook = (*MetricsHook)(nil)
//
// # Registering Hooks
//
// There are two ways to register hooks with an executor:
//
// Option 1: Register directly on the executor (simple cases):
//
//	exec := executor.New(model).
//	    RegisterHook(strategy).
//	    RegisterHook(&MetricsHook{})
//
// Option 2: Use a shared registry (when sharing across executors):
//
//	registry := hooks.NewRegistry()
//	registry.Register(&SharedHook{})
//
//	exec1 := executor.New(model1).WithHooks(registry)
//	exec2 := executor.New(model2).WithHooks(registry)
//
// Note that sharing a retry strategy across executors also shares its retry
// state; normally each agent owns its own strategy instance.
package hooks
