// Package retry implements the combined retry strategy for model and tool
// call failures.
//
// A single [Strategy] composes two independently configured sub-policies
// behind one hook registration:
//
//   - Model retry: retries model calls that failed with a throttling error
//     (*agentry.ThrottledError), using exponential backoff on a single global
//     attempt counter. Enabled by default.
//   - Tool retry: retries failed tool calls (errors or error-status results),
//     with attempt counters keyed per tool use ID so concurrent tool calls in
//     one model turn are tracked independently. Supports per-tool overrides,
//     allow/deny-list filtering, and a caller-supplied should-retry
//     predicate. Disabled by default: tool side effects may not be
//     idempotent, so tool retry is opt-in via WithToolMaxAttempts.
//
// Both sub-policies honor first-claim-wins semantics: if another hook already
// set the event's Retry flag, the strategy does nothing.
//
// # Backoff
//
// Delays grow as initial * 2^attempt, capped at the configured maximum. The
// backoff sleep is the strategy's only suspension point and respects context
// cancellation: a cancelled sleep abandons the retry, but the attempt already
// recorded stands.
//
// # Lifecycle
//
// Create one Strategy per agent session and register it with the hook
// registry. Its mutable state (the model attempt counter and the per-call
// attempt map) is cleared when the AfterInvocationEvent fires, so state never
// leaks across independent invocations but does persist across the round
// trips within one invocation.
//
//	strategy, err := retry.New(
//	    retry.WithToolMaxAttempts(3),
//	    retry.WithToolInitialDelay(time.Second),
//	    retry.WithShouldRetry(func(err error) bool {
//	        return !strings.Contains(err.Error(), "invalid input")
//	    }),
//	)
//	if err != nil {
//	    // configuration conflict
//	}
//	registry.Register(strategy)
package retry
