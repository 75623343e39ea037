package view

import (
	"sync"

	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

// Event is one frame of the viewer feed: the change that was committed and
// the render model after it. Seq 0 is the snapshot sent on connect.
//
// ID and Name travel in the frame's id and event fields. ID is the change
// Seq, or for a snapshot the last Seq it covers.
type Event struct {
	ID        uint64                `json:"-"`
	Name      string                `json:"-"`
	Seq       uint64                `json:"seq"`
	Op        string                `json:"op,omitempty"`
	Direction string                `json:"direction,omitempty"`
	NodeID    uml.NodeID            `json:"nodeId,omitempty"`
	Link      *uml.Link             `json:"link,omitempty"`
	Render    *registry.RenderModel `json:"render,omitempty"`
	Err       error                 `json:"-"`
}

// EventOf builds the feed frame for ch.
func EventOf(ch diagram.Change, rm registry.RenderModel) Event {
	return Event{
		ID:        ch.Seq,
		Seq:       ch.Seq,
		Op:        ch.Op.String(),
		Direction: string(ch.Direction),
		NodeID:    ch.NodeID,
		Link:      ch.Link,
		Render:    &rm,
	}
}

// subscriberBuffer is the per-viewer queue depth. A viewer that falls
// further behind misses frames; every frame carries the full render.
const subscriberBuffer = 64

// historySize bounds the frames kept for viewers that reconnect.
const historySize = 256

// Hub fans events out to subscribers without blocking the publisher, and
// keeps the latest frames so a reconnecting viewer can catch up.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	closed  bool
	history []Event // oldest first
	head    uint64
}

// NewHub returns an open hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and a function that ends
// the subscription. After Close the channel is returned already closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Publish records ev and sends it to every subscriber, dropping it for any
// whose queue is full.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, ev)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}
	h.head = ev.Seq
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Head returns the Seq of the last published event.
func (h *Hub) Head() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.head
}

// Replay returns the published events after seq, oldest first. ok is false
// when seq is ahead of the feed or older than the kept history.
func (h *Hub) Replay(seq uint64) (events []Event, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case seq == h.head:
		return nil, true
	case seq > h.head, len(h.history) == 0, h.history[0].Seq > seq+1:
		return nil, false
	}
	for _, ev := range h.history {
		if ev.Seq > seq {
			events = append(events, ev)
		}
	}
	return events, true
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription.
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
