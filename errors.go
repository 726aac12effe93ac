package agentry

import (
	"errors"
	"fmt"
)

// ErrToolFilterConflict is returned when a retry strategy is constructed with
// both an allow-list and a deny-list of tool names. The lists are mutually
// exclusive; construction fails before any event is processed.
var ErrToolFilterConflict = errors.New(
	"agentry: cannot set both enabled and disabled tool lists")

// ThrottledError indicates a model call was rejected due to rate limiting.
// It is the only model error class that triggers model-level retry; all other
// model errors surface to the caller unchanged.
type ThrottledError struct {
	// Message describes the throttling condition.
	Message string

	// Err is the underlying provider error, if any.
	Err error
}

// NewThrottledError wraps a provider error as a throttling error.
func NewThrottledError(message string, err error) *ThrottledError {
	return &ThrottledError{Message: message, Err: err}
}

// Error implements the error interface.
func (e *ThrottledError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model throttled: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("model throttled: %s", e.Message)
}

// Unwrap returns the underlying provider error.
func (e *ThrottledError) Unwrap() error {
	return e.Err
}

// IsThrottled reports whether err is (or wraps) a ThrottledError.
func IsThrottled(err error) bool {
	var throttled *ThrottledError
	return errors.As(err, &throttled)
}

// MaxTokensError indicates an invocation ended because a model response was
// truncated at the output token limit and no usable content remained after
// recovery.
type MaxTokensError struct {
	// Response is the truncated response, after recovery cleanup.
	Response *ModelResponse
}

// Error implements the error interface.
func (e *MaxTokensError) Error() string {
	return "agentry: model response truncated at max output tokens"
}
