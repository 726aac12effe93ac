// Package tt holds shared test doubles for agentry's own tests.
package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/agentry-dev/agentry"
)

// ScriptedModel returns queued responses in order. Queue entries with a
// non-nil error return that error; the response is returned otherwise.
// Calls past the end of the queue fail.
type ScriptedModel struct {
	mu    sync.Mutex
	queue []ScriptedTurn
	calls int
}

// ScriptedTurn is one queued model outcome.
type ScriptedTurn struct {
	Response *agentry.ModelResponse
	Err      error
}

// NewScriptedModel creates a model that replays the given turns.
func NewScriptedModel(turns ...ScriptedTurn) *ScriptedModel {
	return &ScriptedModel{queue: turns}
}

// Respond queues a plain text response with the given stop reason.
func (m *ScriptedModel) Respond(resp *agentry.ModelResponse) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, ScriptedTurn{Response: resp})
	return m
}

// Fail queues an error outcome.
func (m *ScriptedModel) Fail(err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, ScriptedTurn{Err: err})
	return m
}

// Generate implements agentry.Model.
func (m *ScriptedModel) Generate(
	_ context.Context,
	_ *agentry.InvocationContext,
	_ []llms.MessageContent,
	_ ...llms.CallOption,
) (*agentry.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls >= len(m.queue) {
		return nil, fmt.Errorf("scripted model: unexpected call %d", m.calls+1)
	}
	turn := m.queue[m.calls]
	m.calls++
	if turn.Err != nil {
		return nil, turn.Err
	}
	return turn.Response, nil
}

// Calls returns how many times Generate was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TextResponse builds an end-turn response with the given text.
func TextResponse(text string) *agentry.ModelResponse {
	return &agentry.ModelResponse{
		Content:    text,
		StopReason: agentry.StopReasonEndTurn,
	}
}

// ToolCallResponse builds a tool-use response requesting the given calls.
func ToolCallResponse(calls ...*agentry.ToolUse) *agentry.ModelResponse {
	return &agentry.ModelResponse{
		StopReason: agentry.StopReasonToolUse,
		ToolCalls:  calls,
	}
}

// FlakyTool fails its first FailuresBeforeSuccess calls and succeeds after.
// When FailWithErr is set, failures are Go errors; otherwise they are
// error-status results.
type FlakyTool struct {
	ToolName              string
	FailuresBeforeSuccess int
	FailWithErr           error
	SuccessText           string

	mu    sync.Mutex
	calls int
}

// Name implements agentry.Tool.
func (t *FlakyTool) Name() string { return t.ToolName }

// Description implements agentry.Tool.
func (t *FlakyTool) Description() string { return "test tool that fails then recovers" }

// ParameterSchema implements agentry.Tool.
func (t *FlakyTool) ParameterSchema() map[string]any {
	return map[string]any{"type": "object"}
}

// Call implements agentry.Tool.
func (t *FlakyTool) Call(_ context.Context, _ map[string]any) (*agentry.ToolResult, error) {
	t.mu.Lock()
	t.calls++
	n := t.calls
	t.mu.Unlock()

	if n <= t.FailuresBeforeSuccess {
		if t.FailWithErr != nil {
			return nil, t.FailWithErr
		}
		return agentry.ErrorResult(fmt.Sprintf("transient failure %d", n)), nil
	}
	text := t.SuccessText
	if text == "" {
		text = "ok"
	}
	return agentry.TextResult(text), nil
}

// Calls returns how many times the tool was invoked.
func (t *FlakyTool) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// CollectorHook records every event it sees, in dispatch order.
type CollectorHook struct {
	mu     sync.Mutex
	events []agentry.Event
}

// Events returns a copy of the recorded events.
func (h *CollectorHook) Events() []agentry.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]agentry.Event, len(h.events))
	copy(out, h.events)
	return out
}

func (h *CollectorHook) record(e agentry.Event) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *CollectorHook) OnBeforeInvocation(_ context.Context, _ *agentry.InvocationContext, e *agentry.BeforeInvocationEvent) {
	h.record(e)
}

func (h *CollectorHook) OnAfterInvocation(_ context.Context, _ *agentry.InvocationContext, e *agentry.AfterInvocationEvent) {
	h.record(e)
}

func (h *CollectorHook) OnBeforeModelCall(_ context.Context, _ *agentry.InvocationContext, e *agentry.BeforeModelCallEvent) {
	h.record(e)
}

func (h *CollectorHook) OnAfterModelCall(_ context.Context, _ *agentry.InvocationContext, e *agentry.AfterModelCallEvent) {
	h.record(e)
}

func (h *CollectorHook) OnBeforeToolCall(_ context.Context, _ *agentry.InvocationContext, e *agentry.BeforeToolCallEvent) {
	h.record(e)
}

func (h *CollectorHook) OnAfterToolCall(_ context.Context, _ *agentry.InvocationContext, e *agentry.AfterToolCallEvent) {
	h.record(e)
}

var (
	_ agentry.Model = (*ScriptedModel)(nil)
	_ agentry.Tool  = (*FlakyTool)(nil)
)
