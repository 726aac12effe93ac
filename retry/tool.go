package retry

import (
	"context"
	"errors"
	"time"

	"goa.design/clue/log"

	"github.com/agentry-dev/agentry"
)

// OnAfterToolCall decides whether a completed tool call should be retried.
//
// Attempt counts are keyed by the tool use ID, so concurrent tool calls in
// one model turn are tracked independently. A success deletes the ID's
// record; an exhausted record stays at its final count so the terminal state
// remains inspectable until the invocation resets.
func (s *Strategy) OnAfterToolCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterToolCallEvent,
) {
	if event.Retry {
		return
	}

	var toolUseID, toolName string
	if event.ToolUse != nil {
		toolUseID = event.ToolUse.ToolUseID
		toolName = event.ToolUse.Name
	}

	if !s.toolRetryEnabled(toolName) {
		return
	}

	maxAttempts, initialDelay, maxDelay := s.toolConfig(toolName)

	if !isToolFailure(event) {
		s.mu.Lock()
		delete(s.attempts, toolUseID)
		s.mu.Unlock()
		return
	}

	// Normalize the failure into a single error before the predicate sees
	// it, whether the tool raised or returned an error-status result.
	failure := toolFailure(event)

	if s.shouldRetry != nil && failure != nil && !s.shouldRetry(failure) {
		log.Debug(ctx,
			log.KV{K: "tool_name", V: toolName},
			log.KV{K: "tool_use_id", V: toolUseID},
			log.KV{K: "msg", V: "should_retry predicate returned false"})
		return
	}

	s.mu.Lock()
	attempt := s.attempts[toolUseID] + 1
	s.attempts[toolUseID] = attempt
	s.mu.Unlock()

	if attempt >= maxAttempts {
		log.Debug(ctx,
			log.KV{K: "current_attempt", V: attempt},
			log.KV{K: "max_attempts", V: maxAttempts},
			log.KV{K: "tool_name", V: toolName},
			log.KV{K: "msg", V: "max tool retry attempts reached"})
		return
	}

	delay := backoffDelay(attempt-1, initialDelay, maxDelay)

	log.Debug(ctx,
		log.KV{K: "retry_delay", V: delay},
		log.KV{K: "max_attempts", V: maxAttempts},
		log.KV{K: "current_attempt", V: attempt},
		log.KV{K: "tool_name", V: toolName},
		log.KV{K: "msg", V: "tool error, delaying before next retry"})

	if err := s.sleep(ctx, delay); err != nil {
		return
	}
	event.Retry = true
}

// toolRetryEnabled reports whether retries apply to the named tool: tool
// retry must be on (globally, or for this tool via override), and the tool
// must pass the allow/deny list if one is configured.
func (s *Strategy) toolRetryEnabled(toolName string) bool {
	if s.toolMaxAttempts <= 0 {
		if o, ok := s.overrides[toolName]; !ok || o.MaxAttempts <= 0 {
			return false
		}
	}

	if s.enabled != nil {
		_, ok := s.enabled[toolName]
		return ok
	}
	if s.disabled != nil {
		_, ok := s.disabled[toolName]
		return !ok
	}
	return true
}

// toolConfig resolves the effective retry parameters for the named tool,
// applying override fields over the globals field-by-field.
func (s *Strategy) toolConfig(toolName string) (int, time.Duration, time.Duration) {
	maxAttempts := s.toolMaxAttempts
	initialDelay := s.toolInitialDelay
	maxDelay := s.toolMaxDelay

	if o, ok := s.overrides[toolName]; ok {
		if o.MaxAttempts != 0 {
			maxAttempts = o.MaxAttempts
		}
		if o.InitialDelay != 0 {
			initialDelay = o.InitialDelay
		}
		if o.MaxDelay != 0 {
			maxDelay = o.MaxDelay
		}
	}
	return maxAttempts, initialDelay, maxDelay
}

// isToolFailure reports whether the event represents a failed tool call:
// a raised error, or a result with error status.
func isToolFailure(event *agentry.AfterToolCallEvent) bool {
	if event.Err != nil {
		return true
	}
	return event.Result != nil && event.Result.Status == agentry.ToolResultError
}

// toolFailure derives the error the should-retry predicate is consulted
// with: the raised error when there is one, otherwise an error synthesized
// from the error-status result's first text block.
func toolFailure(event *agentry.AfterToolCallEvent) error {
	if event.Err != nil {
		return event.Err
	}
	if event.Result != nil && event.Result.Status == agentry.ToolResultError {
		if text := event.Result.FirstText(); text != "" {
			return errors.New(text)
		}
		return errors.New("tool returned error status")
	}
	return nil
}
