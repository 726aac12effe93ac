package retry

import (
	"context"
	"sync"
	"time"

	"github.com/agentry-dev/agentry"
)

// Default model retry settings. Model throttle retry is considered safe by
// default: a throttled call had no effect, so re-issuing it is idempotent.
const (
	DefaultModelMaxAttempts  = 6
	DefaultModelInitialDelay = 4 * time.Second
	DefaultModelMaxDelay     = 240 * time.Second
)

// Default tool retry settings. DefaultToolMaxAttempts is zero: tool retry is
// opt-in because tool side effects may not be idempotent.
const (
	DefaultToolMaxAttempts  = 0
	DefaultToolInitialDelay = 1 * time.Second
	DefaultToolMaxDelay     = 30 * time.Second
)

// ToolOverride replaces one or more of the global tool retry parameters for
// a single named tool. A zero-valued field inherits the global setting; to
// turn retry off for one tool while it is enabled globally, use
// WithDisabledTools instead.
type ToolOverride struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Strategy is the combined retry strategy for model and tool call failures.
//
// It implements [agentry.AfterModelCallHook], [agentry.AfterToolCallHook],
// and [agentry.AfterInvocationHook]; registering it once with a hook registry
// wires all three. See the package documentation for behavior.
//
// Configuration is immutable after New. Mutable attempt state is guarded by
// a mutex so that completion events for distinct tool calls may be processed
// in parallel.
type Strategy struct {
	// Model retry configuration.
	modelMaxAttempts  int
	modelInitialDelay time.Duration
	modelMaxDelay     time.Duration

	// Tool retry configuration.
	toolMaxAttempts  int
	toolInitialDelay time.Duration
	toolMaxDelay     time.Duration
	shouldRetry      func(error) bool
	overrides        map[string]ToolOverride
	enabled          map[string]struct{}
	disabled         map[string]struct{}

	// sleep performs the backoff delay. Replaceable for testing.
	sleep func(ctx context.Context, d time.Duration) error

	mu           sync.Mutex
	modelAttempt int
	lastThrottle *agentry.ThrottleEvent
	attempts     map[string]int
}

// New creates a Strategy with the given options applied over the defaults.
//
// It returns [agentry.ErrToolFilterConflict] if both WithEnabledTools and
// WithDisabledTools were supplied: the lists are mutually exclusive, and the
// conflict is rejected before any event is processed.
func New(opts ...Option) (*Strategy, error) {
	s := &Strategy{
		modelMaxAttempts:  DefaultModelMaxAttempts,
		modelInitialDelay: DefaultModelInitialDelay,
		modelMaxDelay:     DefaultModelMaxDelay,
		toolMaxAttempts:   DefaultToolMaxAttempts,
		toolInitialDelay:  DefaultToolInitialDelay,
		toolMaxDelay:      DefaultToolMaxDelay,
		overrides:         make(map[string]ToolOverride),
		sleep:             sleepContext,
		attempts:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.enabled != nil && s.disabled != nil {
		return nil, agentry.ErrToolFilterConflict
	}
	return s, nil
}

// OnAfterInvocation resets all retry state when the invocation ends, so no
// state carries into the next independent invocation.
func (s *Strategy) OnAfterInvocation(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterInvocationEvent,
) {
	s.Reset()
}

// Reset clears the model attempt counter, the cached throttle notification,
// and the per-tool-call attempt map.
func (s *Strategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelAttempt = 0
	s.lastThrottle = nil
	clear(s.attempts)
}

// ModelAttempt returns the current model retry attempt count.
func (s *Strategy) ModelAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelAttempt
}

// ToolAttempt returns the recorded attempt count for a tool use ID. The
// second return is false when the ID has no record, i.e. it has not failed
// since its last success (or at all).
func (s *Strategy) ToolAttempt(toolUseID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.attempts[toolUseID]
	return n, ok
}

// LastThrottle returns the most recent throttle notification, or nil if no
// model retry has happened since the last reset or successful call.
func (s *Strategy) LastThrottle() *agentry.ThrottleEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastThrottle
}

// Compile-time checks for the three hook interfaces the strategy registers.
var (
	_ agentry.AfterModelCallHook  = (*Strategy)(nil)
	_ agentry.AfterToolCallHook   = (*Strategy)(nil)
	_ agentry.AfterInvocationHook = (*Strategy)(nil)
)
