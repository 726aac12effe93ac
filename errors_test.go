package agentry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledError(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := NewThrottledError("provider rate limited", cause)

	assert.Contains(t, err.Error(), "model throttled")
	assert.Contains(t, err.Error(), "provider rate limited")
	assert.ErrorIs(t, err, cause)

	// Matching works through wrapping.
	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, IsThrottled(wrapped))

	var target *ThrottledError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "provider rate limited", target.Message)

	assert.False(t, IsThrottled(errors.New("unrelated")))
	assert.False(t, IsThrottled(nil))
}

func TestThrottledErrorWithoutCause(t *testing.T) {
	err := NewThrottledError("overloaded", nil)
	assert.Equal(t, "model throttled: overloaded", err.Error())
	assert.NoError(t, errors.Unwrap(err))
}

func TestToolResultHelpers(t *testing.T) {
	ok := TextResult("hello")
	assert.Equal(t, ToolResultSuccess, ok.Status)
	assert.Equal(t, "hello", ok.FirstText())

	fail := ErrorResult("boom")
	assert.Equal(t, ToolResultError, fail.Status)
	assert.Equal(t, "boom", fail.FirstText())

	var nilResult *ToolResult
	assert.Empty(t, nilResult.FirstText())

	// Empty leading blocks are skipped.
	mixed := &ToolResult{Content: []ContentBlock{{}, {Text: "second"}}}
	assert.Equal(t, "second", mixed.FirstText())
}
