package agentry

import "sync"

// UnsubscribeFunc cancels a stream subscription. After it returns, the
// subscription channel will close once drained. Safe to call multiple times.
type UnsubscribeFunc func()

// streamHub fans published events out to subscribers. Sends never block:
// each subscription queues events internally and drains them to its channel
// from a dedicated goroutine, so a slow consumer cannot stall the
// invocation task. All methods are concurrent-safe.
type streamHub struct {
	mu     sync.Mutex
	subs   map[uint64]*streamSub
	nextID uint64
	closed bool
}

// streamSub is one subscription: a pending queue plus the drain state.
type streamSub struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	done    bool
	out     chan Event
}

func newStreamHub() *streamHub {
	return &streamHub{subs: make(map[uint64]*streamSub)}
}

// subscribe registers a new subscriber and starts its drain goroutine.
func (h *streamHub) subscribe() (<-chan Event, UnsubscribeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	sub := &streamSub{out: make(chan Event)}
	sub.cond = sync.NewCond(&sub.mu)
	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	go sub.drain()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		sub.stop(true)
	}
	return sub.out, unsubscribe
}

// send queues the event on every subscription. Never blocks.
func (h *streamHub) send(event Event) {
	h.mu.Lock()
	subs := make([]*streamSub, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.enqueue(event)
	}
}

// close stops all subscriptions; their channels close once drained.
func (h *streamHub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[uint64]*streamSub)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.stop(false)
	}
}

func (s *streamSub) enqueue(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.pending = append(s.pending, event)
	s.cond.Signal()
}

// stop ends the subscription. With drop set, pending events are discarded:
// the consumer unsubscribed, and holding the drain goroutine on an abandoned
// channel would leak it. Without drop (hub close, invocation over) pending
// events are still delivered before the channel closes.
func (s *streamSub) stop(drop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	if drop {
		s.pending = nil
	}
	s.cond.Signal()
}

// drain moves queued events to the output channel until stopped and empty.
func (s *streamSub) drain() {
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.done {
			s.cond.Wait()
		}
		if len(s.pending) == 0 {
			s.mu.Unlock()
			close(s.out)
			return
		}
		event := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.out <- event
	}
}
