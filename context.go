package agentry

import (
	"context"
	"sync"
	"time"
)

// InvocationContext scopes one top-level agent invocation. It carries the
// invocation's context.Context, aggregates stats from published events, keeps
// an append-only event log, and fans published events out to asynchronous
// stream subscribers.
//
// One InvocationContext corresponds to one AfterInvocationEvent: retry state
// held by hooks is scoped to it and reset when the invocation ends.
//
// All methods are safe for concurrent use; tool calls within one model turn
// may publish concurrently.
type InvocationContext struct {
	mu sync.RWMutex

	ctx  context.Context
	name string

	events []Event
	stats  InvocationStats
	hub    *streamHub

	result []ContentBlock
	err    error

	startTime time.Time
	endTime   time.Time
}

// NewInvocationContext creates a root InvocationContext with the given name.
// The name identifies the invocation in logs and streams (e.g. "main").
func NewInvocationContext(ctx context.Context, name string) *InvocationContext {
	return &InvocationContext{
		ctx:       ctx,
		name:      name,
		hub:       newStreamHub(),
		startTime: time.Now(),
		stats: InvocationStats{
			ToolCallsByName: make(map[string]int),
		},
	}
}

// Context returns the underlying context.Context for the invocation.
func (inv *InvocationContext) Context() context.Context {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.ctx
}

// Name returns the invocation's name.
func (inv *InvocationContext) Name() string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.name
}

// Publish records an event in the log, updates stats, and delivers the event
// to all stream subscribers without blocking the caller.
//
// The invocation loop publishes lifecycle events after their hooks have run,
// so subscribers observe settled Retry flags.
func (inv *InvocationContext) Publish(event Event) {
	inv.mu.Lock()
	inv.events = append(inv.events, event)
	inv.stats.observe(event)
	hub := inv.hub
	inv.mu.Unlock()

	hub.send(event)
}

// Events returns a copy of all events published so far, in order.
func (inv *InvocationContext) Events() []Event {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Event, len(inv.events))
	copy(out, inv.events)
	return out
}

// Stats returns a copy of the aggregated stats.
func (inv *InvocationContext) Stats() InvocationStats {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.stats.clone()
}

// Subscribe returns a channel receiving every event published after the call,
// and a function that cancels the subscription. Delivery is asynchronous and
// unbounded: publishers never block on slow subscribers. The channel closes
// when the subscription is cancelled or the invocation context is closed.
//
// Subscribers must either drain the channel until it closes or call the
// cancel function. After Close, events still queued for a subscriber are
// flushed to its channel before the close, and that flush blocks until they
// are received; a subscriber that abandons its channel without cancelling
// leaks the delivery goroutine. Cancelling discards queued events instead.
func (inv *InvocationContext) Subscribe() (<-chan Event, UnsubscribeFunc) {
	inv.mu.RLock()
	hub := inv.hub
	inv.mu.RUnlock()
	return hub.subscribe()
}

// Close ends event streaming: all subscriber channels close once drained.
// Called by the invocation loop when the invocation ends. Safe to call more
// than once.
func (inv *InvocationContext) Close() {
	inv.mu.RLock()
	hub := inv.hub
	inv.mu.RUnlock()
	hub.close()
}

// SetResult records the invocation's final result or error and stops the
// clock. Called by the invocation loop exactly once.
func (inv *InvocationContext) SetResult(result []ContentBlock, err error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.result = result
	inv.err = err
	inv.endTime = time.Now()
}

// Result returns the invocation's final result (nil until the invocation
// ends, or on error).
func (inv *InvocationContext) Result() []ContentBlock {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.result
}

// Err returns the error the invocation ended with, if any.
func (inv *InvocationContext) Err() error {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.err
}

// StartTime returns when the invocation began.
func (inv *InvocationContext) StartTime() time.Time {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.startTime
}

// Duration returns the invocation's duration so far, or its total duration
// once it has ended.
func (inv *InvocationContext) Duration() time.Duration {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if inv.endTime.IsZero() {
		return time.Since(inv.startTime)
	}
	return inv.endTime.Sub(inv.startTime)
}
