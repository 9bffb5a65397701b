package sse

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestHub() *SSEHub {
	return &SSEHub{
		eventBuf: NewRingBuffer(defaultRingBufferSize),
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
	}
}

func TestBroadcast_AllClientsReceive(t *testing.T) {
	t.Parallel()

	hub := newTestHub()
	clientA := NewClient("u1", "client")
	clientB := NewClient("u2", "restaurant")
	hub.Register(clientA)
	hub.Register(clientB)

	event := NewEvent(EventQRRotated, map[string]any{"restaurant_id": "r1"})
	hub.Broadcast(event)

	assertEventType(t, clientA.Ch, EventQRRotated)
	assertEventType(t, clientB.Ch, EventQRRotated)
}

func TestSendToRole_OnlyMatchingRoleReceives(t *testing.T) {
	t.Parallel()

	hub := newTestHub()
	restaurant := NewClient("resto-1", "restaurant")
	client := NewClient("client-1", "client")
	hub.Register(restaurant)
	hub.Register(client)

	event := NewEvent(EventQRRotated, map[string]any{"restaurant_id": "r1"})
	hub.SendToRole("restaurant", event)

	assertEventType(t, restaurant.Ch, EventQRRotated)
	assertNoEvent(t, client.Ch)
}

func TestSendToUser_PreciseDelivery(t *testing.T) {
	t.Parallel()

	hub := newTestHub()
	target := NewClient("target", "client")
	other := NewClient("other", "client")
	hub.Register(target)
	hub.Register(other)

	event := NewEvent(EventRewardUnlocked, map[string]any{"reward": "Free dessert"})
	hub.SendToUser("target", event)

	assertEventType(t, target.Ch, EventRewardUnlocked)
	assertNoEvent(t, other.Ch)
}

func TestBackpressure_SlowClientDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	hub := newTestHub()
	slow := &SSEClient{
		UserID: "slow",
		Role:   "client",
		Ch:     make(chan SSEEvent, 1),
		Done:   make(chan struct{}),
	}
	fast := &SSEClient{
		UserID: "fast",
		Role:   "client",
		Ch:     make(chan SSEEvent, 1),
		Done:   make(chan struct{}),
	}
	// Fill slow client queue so dispatch takes non-blocking fallback path.
	slow.Ch <- NewEvent(EventHeartbeat, map[string]any{"seed": true})

	hub.Register(slow)
	hub.Register(fast)

	event := NewEvent(EventStampAdded, map[string]any{"stamps": 2})
	hub.Broadcast(event)

	assertEventType(t, fast.Ch, EventStampAdded)
}

func TestRingBuffer_Since_ReturnsCorrectEvents(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(10)
	rb.Push(SSEEvent{ID: "1", Type: EventHeartbeat})
	rb.Push(SSEEvent{ID: "2", Type: EventStampAdded})
	rb.Push(SSEEvent{ID: "3", Type: EventRewardUnlocked})

	events := rb.Since("1")
	if len(events) != 2 {
		t.Fatalf("expected 2 events after id=1, got %d", len(events))
	}
	if events[0].ID != "2" || events[1].ID != "3" {
		t.Fatalf("unexpected event sequence: %+v", events)
	}
}

func TestRingBuffer_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(3)
	rb.Push(SSEEvent{ID: "1", Type: EventHeartbeat})
	rb.Push(SSEEvent{ID: "2", Type: EventStampAdded})
	rb.Push(SSEEvent{ID: "3", Type: EventRewardUnlocked})
	rb.Push(SSEEvent{ID: "4", Type: EventReferralActivated})

	events := rb.Since("")
	if len(events) != 3 {
		t.Fatalf("expected 3 events in ring buffer, got %d", len(events))
	}
	if events[0].ID != "2" || events[1].ID != "3" || events[2].ID != "4" {
		t.Fatalf("unexpected buffer contents after eviction: %+v", events)
	}
}

func assertEventType(t *testing.T, ch <-chan SSEEvent, wantType string) {
	t.Helper()
	select {
	case event := <-ch:
		if event.Type != wantType {
			t.Fatalf("expected event type %q, got %q", wantType, event.Type)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event type %q", wantType)
	}
}

func assertNoEvent(t *testing.T, ch <-chan SSEEvent) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("expected no event, got %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}
