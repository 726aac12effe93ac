package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-dev/agentry"
)

func throttled() error {
	return agentry.NewThrottledError("rate limited", nil)
}

func TestModelRetryBackoffSequence(t *testing.T) {
	s, rec := newTestStrategy(t, WithModelInitialDelay(time.Second))
	ctx := context.Background()

	// Three consecutive throttles double the delay each time.
	for i := 0; i < 3; i++ {
		event := &agentry.AfterModelCallEvent{Err: throttled()}
		s.OnAfterModelCall(ctx, nil, event)
		require.True(t, event.Retry, "attempt %d", i)
	}

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, rec.recorded())
	assert.Equal(t, 3, s.ModelAttempt())
}

func TestModelRetryDelayCap(t *testing.T) {
	s, rec := newTestStrategy(t,
		WithModelInitialDelay(100*time.Second),
		WithModelMaxDelay(240*time.Second),
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		event := &agentry.AfterModelCallEvent{Err: throttled()}
		s.OnAfterModelCall(ctx, nil, event)
		require.True(t, event.Retry)
	}

	assert.Equal(t, []time.Duration{
		100 * time.Second,
		200 * time.Second,
		240 * time.Second,
	}, rec.recorded())
}

func TestModelRetryExhaustion(t *testing.T) {
	s, _ := newTestStrategy(t, WithModelMaxAttempts(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		event := &agentry.AfterModelCallEvent{Err: throttled()}
		s.OnAfterModelCall(ctx, nil, event)
		require.True(t, event.Retry, "attempt %d", i)
	}

	// Third throttle is past the cap: the error surfaces.
	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(ctx, nil, event)
	assert.False(t, event.Retry)
	assert.Equal(t, 2, s.ModelAttempt())
}

func TestModelRetryZeroAttemptsDisables(t *testing.T) {
	s, rec := newTestStrategy(t, WithModelMaxAttempts(0))

	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(context.Background(), nil, event)

	assert.False(t, event.Retry)
	assert.Empty(t, rec.recorded())
}

func TestModelRetryIgnoresOtherErrors(t *testing.T) {
	s, rec := newTestStrategy(t)
	ctx := context.Background()

	// Build up attempt state first.
	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(ctx, nil, event)
	require.Equal(t, 1, s.ModelAttempt())

	// A non-throttle failure is not retried and resets the counter.
	event = &agentry.AfterModelCallEvent{Err: errors.New("invalid request")}
	s.OnAfterModelCall(ctx, nil, event)
	assert.False(t, event.Retry)
	assert.Zero(t, s.ModelAttempt())
	assert.Nil(t, s.LastThrottle())
	assert.Len(t, rec.recorded(), 1)
}

func TestModelRetrySuccessResets(t *testing.T) {
	s, _ := newTestStrategy(t)
	ctx := context.Background()

	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(ctx, nil, event)
	require.Equal(t, 1, s.ModelAttempt())

	success := &agentry.AfterModelCallEvent{
		StopResponse: &agentry.ModelResponse{StopReason: agentry.StopReasonEndTurn},
	}
	s.OnAfterModelCall(ctx, nil, success)

	assert.False(t, success.Retry)
	assert.Zero(t, s.ModelAttempt())

	// The next throttle sequence starts from the initial delay again.
	event = &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(ctx, nil, event)
	require.True(t, event.Retry)
	assert.Equal(t, 1, s.ModelAttempt())
}

func TestModelRetryClaimedEventUntouched(t *testing.T) {
	s, rec := newTestStrategy(t)

	event := &agentry.AfterModelCallEvent{Err: throttled(), Retry: true}
	s.OnAfterModelCall(context.Background(), nil, event)

	assert.True(t, event.Retry)
	assert.Zero(t, s.ModelAttempt())
	assert.Empty(t, rec.recorded())
}

func TestModelRetryCancelledSleep(t *testing.T) {
	rec := &sleepRecorder{err: context.Canceled}
	s, err := New(WithSleep(rec.sleep))
	require.NoError(t, err)

	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(context.Background(), nil, event)

	// The retry is abandoned but the attempt still counts.
	assert.False(t, event.Retry)
	assert.Equal(t, 1, s.ModelAttempt())
}

func TestModelRetryPublishesThrottleEvent(t *testing.T) {
	s, _ := newTestStrategy(t, WithModelInitialDelay(2500*time.Millisecond))
	inv := agentry.NewInvocationContext(context.Background(), "test")

	event := &agentry.AfterModelCallEvent{Err: throttled()}
	s.OnAfterModelCall(context.Background(), inv, event)
	require.True(t, event.Retry)

	events := inv.Events()
	require.Len(t, events, 1)
	throttle, ok := events[0].(*agentry.ThrottleEvent)
	require.True(t, ok)
	// Sub-second precision is truncated, not rounded.
	assert.Equal(t, 2, throttle.Delay)

	last := s.LastThrottle()
	require.NotNil(t, last)
	assert.Equal(t, throttle, last)
}
