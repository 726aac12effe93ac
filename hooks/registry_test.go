package hooks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-dev/agentry"
)

// orderHook records its label each time it sees an after-tool-call event,
// optionally claiming the retry.
type orderHook struct {
	label string
	claim bool
	log   *[]string
	seen  []bool
}

func (h *orderHook) OnAfterToolCall(
	_ context.Context, _ *agentry.InvocationContext, e *agentry.AfterToolCallEvent,
) {
	*h.log = append(*h.log, h.label)
	h.seen = append(h.seen, e.Retry)
	if h.claim && !e.Retry {
		e.Retry = true
	}
}

// modelOnlyHook implements only the after-model-call interface.
type modelOnlyHook struct {
	calls int
}

func (h *modelOnlyHook) OnAfterModelCall(
	_ context.Context, _ *agentry.InvocationContext, _ *agentry.AfterModelCallEvent,
) {
	h.calls++
}

func TestRegistryDispatchOrder(t *testing.T) {
	var log []string
	first := &orderHook{label: "first", log: &log}
	second := &orderHook{label: "second", log: &log}

	r := NewRegistry().Register(first).Register(second)
	r.FireAfterToolCall(context.Background(), nil, &agentry.AfterToolCallEvent{})

	assert.Equal(t, []string{"first", "second"}, log)
}

func TestRegistryFirstClaimWins(t *testing.T) {
	var log []string
	first := &orderHook{label: "first", claim: true, log: &log}
	second := &orderHook{label: "second", claim: true, log: &log}

	r := NewRegistry().Register(first).Register(second)
	event := &agentry.AfterToolCallEvent{}
	r.FireAfterToolCall(context.Background(), nil, event)

	require.True(t, event.Retry)
	// The first hook saw an unclaimed event; the second saw it claimed.
	assert.Equal(t, []bool{false}, first.seen)
	assert.Equal(t, []bool{true}, second.seen)
}

func TestRegistryInterfaceDetection(t *testing.T) {
	var log []string
	toolHook := &orderHook{label: "tool", log: &log}
	modelHook := &modelOnlyHook{}

	r := NewRegistry().Register(toolHook).Register(modelHook)
	ctx := context.Background()

	r.FireAfterModelCall(ctx, nil, &agentry.AfterModelCallEvent{})
	r.FireAfterToolCall(ctx, nil, &agentry.AfterToolCallEvent{})

	assert.Equal(t, 1, modelHook.calls)
	assert.Equal(t, []string{"tool"}, log)
}

func TestRegistryLenAndClear(t *testing.T) {
	r := NewRegistry()
	assert.Zero(t, r.Len())

	r.Register(&modelOnlyHook{}).Register(&modelOnlyHook{})
	assert.Equal(t, 2, r.Len())

	r.Clear()
	assert.Zero(t, r.Len())
}

func TestRegistryFireWithNoHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	// Firing on an empty registry is a no-op, not a panic.
	r.FireBeforeInvocation(ctx, nil, &agentry.BeforeInvocationEvent{})
	r.FireAfterInvocation(ctx, nil, &agentry.AfterInvocationEvent{})
	r.FireBeforeModelCall(ctx, nil, &agentry.BeforeModelCallEvent{})
	r.FireAfterModelCall(ctx, nil, &agentry.AfterModelCallEvent{})
	r.FireBeforeToolCall(ctx, nil, &agentry.BeforeToolCallEvent{})
	r.FireAfterToolCall(ctx, nil, &agentry.AfterToolCallEvent{})
}
