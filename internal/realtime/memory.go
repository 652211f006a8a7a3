package realtime

import (
	"context"
	"sync"
	"time"
)

// subscriberBuffer bounds the per-subscriber queue. A consumer that falls
// further behind loses cues, which is acceptable: the next cue still triggers
// the refetch.
const subscriberBuffer = 8

// Hub is the in-process Feed: a fan-out over buffered channels. It is the
// default transport for single-instance deployments and the backbone the MQTT
// feed delivers into.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Cue
	nextID int
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Cue)}
}

// Publish fans the cue out to every subscriber without blocking: a full
// subscriber queue drops the cue for that subscriber only.
func (h *Hub) Publish(_ context.Context, collection string) error {
	cue := Cue{Collection: collection, At: time.Now().UTC()}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	for _, ch := range h.subs {
		select {
		case ch <- cue:
		default:
		}
	}
	return nil
}

// Subscribe registers a new consumer. The returned cancel function is
// idempotent and closes the channel.
func (h *Hub) Subscribe() (<-chan Cue, func()) {
	ch := make(chan Cue, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close tears down every subscription. Publish becomes a no-op afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
