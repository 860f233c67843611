// Package realtime is an in-process publish/subscribe hub that fans out
// account and favorite change events to interested listeners, such as
// WebSocket sessions.
//
// Delivery is best effort: every subscription owns a buffered channel and
// an event that does not fit is dropped for that subscription only, so a
// slow consumer never blocks a publisher. Nothing is persisted or replayed.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// Event types.
const (
	FavoriteAdded   = "favorite_added"
	FavoriteRemoved = "favorite_removed"
	SignedUp        = "signed_up"
	SignedIn        = "signed_in"
	SignedOut       = "signed_out"
)

// Event is one change notification.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`

	// Key and Item are set for favorite events. Item is only present when
	// a title was added.
	Key  string        `json:"key,omitempty"`
	Item *catalog.Item `json:"item,omitempty"`
}

// Hub is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]*Subscription
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-subscription buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]*Subscription),
		bufSize:   bufSize,
	}
}

// Subscription is a handle on a registered listener.
type Subscription struct {
	id     uint64
	hub    *Hub
	ch     chan Event
	filter func(Event) bool
	once   sync.Once
	done   chan struct{}
}

// Subscribe registers a listener. filter selects the events delivered; nil
// delivers everything. The subscription is released by Close or when ctx
// ends, whichever happens first.
func (h *Hub) Subscribe(ctx context.Context, filter func(Event) bool) *Subscription {
	h.mu.Lock()
	sub := &Subscription{
		id:     h.nextID,
		hub:    h,
		ch:     make(chan Event, h.bufSize),
		filter: filter,
		done:   make(chan struct{}),
	}
	h.nextID++
	h.listeners[sub.id] = sub
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub
}

// ForUser returns a filter matching events of one user.
func ForUser(userID string) func(Event) bool {
	return func(e Event) bool { return e.UserID == userID }
}

// Events is closed once the subscription is released.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Done is closed once the subscription is released.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.listeners, s.id)
		close(s.ch)
		s.hub.mu.Unlock()
		close(s.done)
	})
}

// Publish delivers e to every matching subscription without blocking.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.listeners {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the number of active subscriptions.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
