package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-dev/agentry"
)

func TestToolRetryDisabledByDefault(t *testing.T) {
	s, rec := newTestStrategy(t)

	event := failedToolEvent("t1", "search")
	s.OnAfterToolCall(context.Background(), nil, event)

	assert.False(t, event.Retry)
	assert.Empty(t, rec.recorded())
	_, tracked := s.ToolAttempt("t1")
	assert.False(t, tracked)
}

func TestToolRetryCountsAttempts(t *testing.T) {
	s, rec := newTestStrategy(t, WithToolMaxAttempts(2))
	ctx := context.Background()

	// First failure: one retry with the initial delay.
	event := failedToolEvent("t1", "search")
	s.OnAfterToolCall(ctx, nil, event)
	require.True(t, event.Retry)
	assert.Equal(t, []time.Duration{time.Second}, rec.recorded())

	// Second failure reaches the cap: no further retry, and the terminal
	// count stays inspectable.
	event = failedToolEvent("t1", "search")
	s.OnAfterToolCall(ctx, nil, event)
	assert.False(t, event.Retry)

	n, tracked := s.ToolAttempt("t1")
	require.True(t, tracked)
	assert.Equal(t, 2, n)
}

func TestToolRetryPerCallIsolation(t *testing.T) {
	s, _ := newTestStrategy(t, WithToolMaxAttempts(3))
	ctx := context.Background()

	// Two concurrent calls to the same tool fail independently.
	var wg sync.WaitGroup
	for _, id := range []string{"t1", "t2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.OnAfterToolCall(ctx, nil, failedToolEvent(id, "search"))
		}()
	}
	wg.Wait()

	for _, id := range []string{"t1", "t2"} {
		n, tracked := s.ToolAttempt(id)
		require.True(t, tracked, id)
		assert.Equal(t, 1, n, id)
	}
}

func TestToolRetrySuccessClearsState(t *testing.T) {
	s, _ := newTestStrategy(t, WithToolMaxAttempts(3))
	ctx := context.Background()

	s.OnAfterToolCall(ctx, nil, failedToolEvent("t1", "search"))
	_, tracked := s.ToolAttempt("t1")
	require.True(t, tracked)

	success := &agentry.AfterToolCallEvent{
		ToolUse: &agentry.ToolUse{ToolUseID: "t1", Name: "search"},
		Result:  agentry.TextResult("ok"),
	}
	s.OnAfterToolCall(ctx, nil, success)

	assert.False(t, success.Retry)
	_, tracked = s.ToolAttempt("t1")
	assert.False(t, tracked)
}

func TestToolRetryRaisedErrorAndErrorResult(t *testing.T) {
	tests := []struct {
		name  string
		event *agentry.AfterToolCallEvent
	}{
		{
			name: "raised error",
			event: &agentry.AfterToolCallEvent{
				ToolUse: &agentry.ToolUse{ToolUseID: "t1", Name: "search"},
				Err:     errors.New("connection refused"),
			},
		},
		{
			name: "error status result",
			event: &agentry.AfterToolCallEvent{
				ToolUse: &agentry.ToolUse{ToolUseID: "t1", Name: "search"},
				Result:  agentry.ErrorResult("connection refused"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStrategy(t, WithToolMaxAttempts(2))
			s.OnAfterToolCall(context.Background(), nil, tt.event)
			assert.True(t, tt.event.Retry)
		})
	}
}

func TestToolRetryShouldRetryVeto(t *testing.T) {
	var seen []string
	s, rec := newTestStrategy(t,
		WithToolMaxAttempts(3),
		WithShouldRetry(func(err error) bool {
			seen = append(seen, err.Error())
			return false
		}),
	)

	event := failedToolEvent("t1", "search")
	s.OnAfterToolCall(context.Background(), nil, event)

	assert.False(t, event.Retry)
	assert.Empty(t, rec.recorded())
	// A vetoed failure does not consume an attempt.
	_, tracked := s.ToolAttempt("t1")
	assert.False(t, tracked)
	// The predicate sees the error-status result's text as the error.
	assert.Equal(t, []string{"boom"}, seen)
}

func TestToolRetryShouldRetryAllows(t *testing.T) {
	s, _ := newTestStrategy(t,
		WithToolMaxAttempts(3),
		WithShouldRetry(func(err error) bool {
			return errors.Is(err, errTransient)
		}),
	)

	event := &agentry.AfterToolCallEvent{
		ToolUse: &agentry.ToolUse{ToolUseID: "t1", Name: "search"},
		Err:     errTransient,
	}
	s.OnAfterToolCall(context.Background(), nil, event)
	assert.True(t, event.Retry)
}

var errTransient = errors.New("transient")

func TestToolRetryOverrideParameters(t *testing.T) {
	s, rec := newTestStrategy(t,
		WithToolOverride("special_tool", ToolOverride{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
		}),
	)
	ctx := context.Background()

	// Override enables retry for this tool even though the global cap is
	// zero, with its own delay curve.
	for i := 0; i < 4; i++ {
		event := failedToolEvent("t1", "special_tool")
		s.OnAfterToolCall(ctx, nil, event)
		require.True(t, event.Retry, "attempt %d", i)
	}
	event := failedToolEvent("t1", "special_tool")
	s.OnAfterToolCall(ctx, nil, event)
	assert.False(t, event.Retry)

	assert.Equal(t, []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}, rec.recorded())

	// Other tools still follow the global (disabled) setting.
	other := failedToolEvent("t2", "other_tool")
	s.OnAfterToolCall(ctx, nil, other)
	assert.False(t, other.Retry)
}

func TestToolRetryOverrideInheritsUnsetFields(t *testing.T) {
	s, rec := newTestStrategy(t,
		WithToolMaxAttempts(2),
		WithToolInitialDelay(3*time.Second),
		WithToolOverride("special_tool", ToolOverride{MaxAttempts: 3}),
	)
	ctx := context.Background()

	event := failedToolEvent("t1", "special_tool")
	s.OnAfterToolCall(ctx, nil, event)
	require.True(t, event.Retry)

	// InitialDelay was not overridden, so the global applies.
	assert.Equal(t, []time.Duration{3 * time.Second}, rec.recorded())
}

func TestToolRetryEnabledList(t *testing.T) {
	s, _ := newTestStrategy(t,
		WithToolMaxAttempts(4),
		WithEnabledTools("enabled_tool"),
	)
	ctx := context.Background()

	allowed := failedToolEvent("t1", "enabled_tool")
	s.OnAfterToolCall(ctx, nil, allowed)
	assert.True(t, allowed.Retry)

	blocked := failedToolEvent("t2", "other_tool")
	s.OnAfterToolCall(ctx, nil, blocked)
	assert.False(t, blocked.Retry)
	_, tracked := s.ToolAttempt("t2")
	assert.False(t, tracked)
}

func TestToolRetryDisabledList(t *testing.T) {
	s, _ := newTestStrategy(t,
		WithToolMaxAttempts(4),
		WithDisabledTools("send_email"),
	)
	ctx := context.Background()

	blocked := failedToolEvent("t1", "send_email")
	s.OnAfterToolCall(ctx, nil, blocked)
	assert.False(t, blocked.Retry)

	allowed := failedToolEvent("t2", "search")
	s.OnAfterToolCall(ctx, nil, allowed)
	assert.True(t, allowed.Retry)
}

func TestToolRetryClaimedEventUntouched(t *testing.T) {
	s, rec := newTestStrategy(t, WithToolMaxAttempts(3))

	event := failedToolEvent("t1", "search")
	event.Retry = true
	s.OnAfterToolCall(context.Background(), nil, event)

	assert.True(t, event.Retry)
	assert.Empty(t, rec.recorded())
	_, tracked := s.ToolAttempt("t1")
	assert.False(t, tracked)
}

func TestToolRetryCancelledSleep(t *testing.T) {
	rec := &sleepRecorder{err: context.Canceled}
	s, err := New(WithToolMaxAttempts(3), WithSleep(rec.sleep))
	require.NoError(t, err)

	event := failedToolEvent("t1", "search")
	s.OnAfterToolCall(context.Background(), nil, event)

	// The retry is abandoned but the attempt still counts.
	assert.False(t, event.Retry)
	n, tracked := s.ToolAttempt("t1")
	require.True(t, tracked)
	assert.Equal(t, 1, n)
}
