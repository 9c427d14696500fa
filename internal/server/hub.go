package server

import (
	"context"
	"sync"

	"github.com/theirongolddev/budgetbot/internal/events"
)

// Envelope is an event as retained and streamed by the hub.
type Envelope struct {
	ID int64 `json:"id"`
	events.Event
}

// Hub keeps a ring buffer of recent change events and fans them out to
// stream subscribers. It is an events.Publisher.
type Hub struct {
	size int

	mu     sync.RWMutex
	nextID int64
	recent []Envelope

	nextSubID int
	subs      map[int]chan Envelope
}

// NewHub returns a hub retaining at most size events.
func NewHub(size int) *Hub {
	if size < 1 {
		size = 200
	}
	return &Hub{size: size, subs: make(map[int]chan Envelope)}
}

// Publish records e and offers it to every subscriber. Slow subscribers
// miss events rather than block the publisher.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	env := Envelope{ID: h.nextID, Event: e}
	h.recent = append(h.recent, env)
	if len(h.recent) > h.size {
		h.recent = h.recent[len(h.recent)-h.size:]
	}

	for _, ch := range h.subs {
		select {
		case ch <- env:
		default:
		}
	}
	return nil
}

// Recent returns the retained events, oldest first. A non-empty sessionID
// keeps only that session's events.
func (h *Hub) Recent(sessionID string) []Envelope {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Envelope, 0, len(h.recent))
	for _, env := range h.recent {
		if sessionID == "" || env.SessionID == sessionID {
			out = append(out, env)
		}
	}
	return out
}

// Subscribe registers a stream listener.
func (h *Hub) Subscribe(buffer int) (int, <-chan Envelope) {
	ch := make(chan Envelope, buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSubID++
	h.subs[h.nextSubID] = ch
	return h.nextSubID, ch
}

// Unsubscribe removes a stream listener.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Counts reports retained events and live subscribers.
func (h *Hub) Counts() (retained, subscribers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.recent), len(h.subs)
}
