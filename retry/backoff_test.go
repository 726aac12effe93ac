package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		initial time.Duration
		max     time.Duration
		want    time.Duration
	}{
		{"first attempt", 0, 4 * time.Second, 240 * time.Second, 4 * time.Second},
		{"doubles", 1, 4 * time.Second, 240 * time.Second, 8 * time.Second},
		{"keeps doubling", 3, 4 * time.Second, 240 * time.Second, 32 * time.Second},
		{"clamped at max", 6, 4 * time.Second, 240 * time.Second, 240 * time.Second},
		{"clamped exactly", 5, 4 * time.Second, 128 * time.Second, 128 * time.Second},
		{"huge attempt saturates", 200, 4 * time.Second, 240 * time.Second, 240 * time.Second},
		{"sub-second initial", 2, 250 * time.Millisecond, 30 * time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoffDelay(tt.attempt, tt.initial, tt.max))
		})
	}
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Minute), context.Canceled)
}
