package retry

import (
	"context"
	"time"
)

// Option configures a Strategy at construction time.
type Option func(*Strategy)

// WithModelMaxAttempts caps model retry attempts. Zero disables model retry.
func WithModelMaxAttempts(n int) Option {
	return func(s *Strategy) { s.modelMaxAttempts = n }
}

// WithModelInitialDelay sets the base backoff delay for model retries.
func WithModelInitialDelay(d time.Duration) Option {
	return func(s *Strategy) { s.modelInitialDelay = d }
}

// WithModelMaxDelay caps the backoff delay for model retries.
func WithModelMaxDelay(d time.Duration) Option {
	return func(s *Strategy) { s.modelMaxDelay = d }
}

// WithToolMaxAttempts caps tool retry attempts. Zero (the default) disables
// tool retry globally; per-tool overrides with a positive MaxAttempts can
// still enable it for individual tools.
func WithToolMaxAttempts(n int) Option {
	return func(s *Strategy) { s.toolMaxAttempts = n }
}

// WithToolInitialDelay sets the base backoff delay for tool retries.
func WithToolInitialDelay(d time.Duration) Option {
	return func(s *Strategy) { s.toolInitialDelay = d }
}

// WithToolMaxDelay caps the backoff delay for tool retries.
func WithToolMaxDelay(d time.Duration) Option {
	return func(s *Strategy) { s.toolMaxDelay = d }
}

// WithShouldRetry installs a predicate consulted for each tool failure.
// Returning false vetoes the retry; the failing attempt is then not counted.
// The predicate receives the tool's error, or an error synthesized from the
// error-status result when the tool failed without raising one.
func WithShouldRetry(fn func(error) bool) Option {
	return func(s *Strategy) { s.shouldRetry = fn }
}

// WithToolOverride replaces retry parameters for a single named tool.
// Override fields take precedence field-by-field over the globals.
func WithToolOverride(toolName string, o ToolOverride) Option {
	return func(s *Strategy) { s.overrides[toolName] = o }
}

// WithEnabledTools restricts tool retry to the named tools (allow-list).
// Mutually exclusive with WithDisabledTools.
func WithEnabledTools(names ...string) Option {
	return func(s *Strategy) {
		s.enabled = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.enabled[name] = struct{}{}
		}
	}
}

// WithDisabledTools excludes the named tools from tool retry (deny-list).
// Mutually exclusive with WithEnabledTools.
func WithDisabledTools(names ...string) Option {
	return func(s *Strategy) {
		s.disabled = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.disabled[name] = struct{}{}
		}
	}
}

// WithSleep replaces the backoff sleep function. Intended for tests that
// want to observe or skip delays; the function must honor ctx cancellation
// and return a non-nil error when cancelled.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Strategy) { s.sleep = fn }
}
