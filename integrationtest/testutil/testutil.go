// Package testutil provides shared helpers for agentry integration tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/agentry-dev/agentry"
	"github.com/agentry-dev/agentry/executor"
)

// SleepRecorder stands in for real backoff sleeps. Delays are recorded and
// skipped so scenarios with long backoff curves finish instantly.
type SleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep records the requested delay and returns immediately.
func (r *SleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

// Delays returns the recorded delays in order.
func (r *SleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.delays))
	copy(out, r.delays)
	return out
}

// RunResult bundles everything a scenario assertion needs.
type RunResult struct {
	Result   []agentry.ContentBlock
	Err      error
	Inv      *agentry.InvocationContext
	Streamed []agentry.Event
}

// FinalText returns the text of the first result block, or "".
func (r *RunResult) FinalText() string {
	if len(r.Result) == 0 {
		return ""
	}
	return r.Result[0].Text
}

// Throttles returns the throttle events observed on the stream.
func (r *RunResult) Throttles() []*agentry.ThrottleEvent {
	var out []*agentry.ThrottleEvent
	for _, e := range r.Streamed {
		if throttle, ok := e.(*agentry.ThrottleEvent); ok {
			out = append(out, throttle)
		}
	}
	return out
}

// Run executes one invocation with a stream subscriber attached, waits for
// the stream to drain, and returns the collected outcome.
func Run(t *testing.T, exec *executor.Executor, prompt string) *RunResult {
	t.Helper()

	inv := agentry.NewInvocationContext(context.Background(), t.Name())
	ch, _ := inv.Subscribe()

	var (
		streamed []agentry.Event
		done     = make(chan struct{})
	)
	go func() {
		defer close(done)
		for e := range ch {
			streamed = append(streamed, e)
		}
	}()

	result, err := exec.Run(inv, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not drain")
	}

	return &RunResult{Result: result, Err: err, Inv: inv, Streamed: streamed}
}

// CountEvents returns how many collected events match the predicate.
func CountEvents(events []agentry.Event, match func(agentry.Event) bool) int {
	var n int
	for _, e := range events {
		if match(e) {
			n++
		}
	}
	return n
}
