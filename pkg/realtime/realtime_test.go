package realtime

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishFansOut(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe(context.Background(), nil)
	b := h.Subscribe(context.Background(), nil)
	defer a.Close()
	defer b.Close()

	h.Publish(Event{Type: SignedIn, UserID: "u1"})

	for _, sub := range []*Subscription{a, b} {
		e := receive(t, sub)
		if e.Type != SignedIn || e.At.IsZero() {
			t.Fatalf("unexpected event %+v", e)
		}
	}
}

func TestFilterByUser(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe(context.Background(), ForUser("u2"))
	defer sub.Close()

	h.Publish(Event{Type: FavoriteAdded, UserID: "u1", Key: "movie-1"})
	h.Publish(Event{Type: FavoriteRemoved, UserID: "u2", Key: "tv-9"})

	e := receive(t, sub)
	if e.UserID != "u2" || e.Key != "tv-9" {
		t.Fatalf("unexpected event %+v", e)
	}
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected extra event %+v", e)
	default:
	}
}

func TestSlowListenerDrops(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe(context.Background(), nil)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		h.Publish(Event{Type: SignedIn})
	}
	receive(t, sub)
	select {
	case <-sub.Events():
		t.Fatal("expected overflow events to be dropped")
	default:
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h := NewHub(0)
	sub := h.Subscribe(context.Background(), nil)

	sub.Close()
	sub.Close()

	if h.Size() != 0 {
		t.Fatalf("expected no listeners, got %d", h.Size())
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("events channel should be closed")
	}
	h.Publish(Event{Type: SignedOut})
}

func TestContextReleasesSubscription(t *testing.T) {
	h := NewHub(0)
	ctx, cancel := context.WithCancel(context.Background())
	sub := h.Subscribe(ctx, nil)
	if h.Size() != 1 {
		t.Fatalf("expected 1 listener, got %d", h.Size())
	}

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not released after cancel")
	}
	if h.Size() != 0 {
		t.Fatalf("expected 0 listeners, got %d", h.Size())
	}
	sub.Close()
}
