package retry

import (
	"context"
	"errors"
	"time"

	"goa.design/clue/log"

	"github.com/agentry-dev/agentry"
)

// OnAfterModelCall decides whether a completed model call should be retried.
//
// Only throttling errors (*agentry.ThrottledError) are retried; a success or
// any other error resets the attempt counter and the cached throttle
// notification. If another hook already claimed the retry, the event is left
// untouched.
func (s *Strategy) OnAfterModelCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterModelCallEvent,
) {
	if event.Retry {
		return
	}

	if event.StopResponse != nil {
		s.resetModel()
		return
	}

	// Rate limiting is the only model failure this strategy owns. Everything
	// else surfaces to the caller unchanged.
	var throttled *agentry.ThrottledError
	if !errors.As(event.Err, &throttled) {
		s.resetModel()
		return
	}

	s.mu.Lock()
	attempt := s.modelAttempt
	if attempt >= s.modelMaxAttempts {
		s.mu.Unlock()
		log.Debug(ctx,
			log.KV{K: "current_attempt", V: attempt},
			log.KV{K: "max_attempts", V: s.modelMaxAttempts},
			log.KV{K: "msg", V: "max model retry attempts reached"})
		return
	}

	delay := backoffDelay(attempt, s.modelInitialDelay, s.modelMaxDelay)

	// The attempt is recorded before the sleep: if the task is cancelled
	// mid-backoff the retry is abandoned but the attempt still counts.
	throttle := &agentry.ThrottleEvent{Delay: int(delay / time.Second)}
	s.lastThrottle = throttle
	s.modelAttempt = attempt + 1
	s.mu.Unlock()

	log.Debug(ctx,
		log.KV{K: "retry_delay", V: delay},
		log.KV{K: "max_attempts", V: s.modelMaxAttempts},
		log.KV{K: "current_attempt", V: attempt},
		log.KV{K: "msg", V: "model throttled, delaying before next retry"})

	if err := s.sleep(ctx, delay); err != nil {
		return
	}

	if inv != nil {
		inv.Publish(throttle)
	}
	event.Retry = true
}

// resetModel clears the model attempt counter and the cached throttle
// notification.
func (s *Strategy) resetModel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelAttempt = 0
	s.lastThrottle = nil
}
