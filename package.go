// Package agentry provides retry coordination for LLM agent invocation loops.
//
// The package defines the runtime vocabulary an agent loop and its observers
// share: lifecycle events fired after every model call and tool call, hook
// interfaces for consuming those events, and the model/tool seams the loop
// drives. The centerpiece is the combined retry strategy in the retry
// subpackage, which subscribes to the after-call events and requests retries
// for throttled model calls and failed tool calls through the events' mutable
// Retry flag.
//
// # Quick Start
//
//	// 1. Wrap a LangChainGo model
//	model := models.NewLangChain(llm).WithModelName("gpt-4o")
//
//	// 2. Create a retry strategy: model throttle retry is on by default,
//	//    tool retry is opt-in.
//	strategy, err := retry.New(
//	    retry.WithToolMaxAttempts(3),
//	    retry.WithToolOverride("search", retry.ToolOverride{MaxAttempts: 5}),
//	)
//	if err != nil {
//	    // both an allow-list and a deny-list were configured
//	}
//
//	// 3. Build the executor and register the strategy as a hook
//	exec := executor.New(model).
//	    RegisterTool(searchTool).
//	    RegisterHook(strategy)
//
//	// 4. Run one invocation
//	inv := agentry.NewInvocationContext(ctx, "main")
//	result, err := exec.Run(inv, messages)
//
// # Events and Hooks
//
// Events are passed to hooks as pointers; a hook that wants another attempt
// of the call it just observed sets the event's Retry flag. Hooks fire in
// registration order and the first hook to claim a retry wins - later hooks
// see Retry already set and stand down.
//
// # Invocation Lifecycle
//
// An InvocationContext scopes one top-level invocation: it aggregates stats,
// records every published event, and streams events asynchronously to
// subscribers. The AfterInvocationEvent fires exactly once per invocation,
// which is what the retry strategy uses to clear its counters so no retry
// state leaks between independent invocations.
package agentry
