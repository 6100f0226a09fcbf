package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func mustReceiveMessage(t *testing.T, ch <-chan []byte, timeout time.Duration) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for websocket payload")
		return nil
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clientA := NewClient(hub, nil)
	clientB := NewClient(hub, nil)

	hub.Register(clientA)
	hub.Register(clientB)
	t.Cleanup(func() {
		hub.Unregister(clientA)
		hub.Unregister(clientB)
	})

	time.Sleep(25 * time.Millisecond)

	hub.Broadcast([]byte("board-update"))
	if got := string(mustReceiveMessage(t, clientA.Send, 200*time.Millisecond)); got != "board-update" {
		t.Fatalf("expected board-update for clientA, got %q", got)
	}
	if got := string(mustReceiveMessage(t, clientB.Send, 200*time.Millisecond)); got != "board-update" {
		t.Fatalf("expected board-update for clientB, got %q", got)
	}
}

func TestBoardNotifierBroadcastsEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil)
	hub.Register(client)
	t.Cleanup(func() { hub.Unregister(client) })

	time.Sleep(25 * time.Millisecond)

	notifier := &BoardNotifier{Hub: hub}
	updatedAt := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	notifier.Refreshed(12, updatedAt)

	var refreshed Event
	if err := json.Unmarshal(mustReceiveMessage(t, client.Send, 200*time.Millisecond), &refreshed); err != nil {
		t.Fatalf("decode refreshed event: %v", err)
	}
	if refreshed.Type != EventTicketsRefreshed {
		t.Fatalf("expected %s, got %s", EventTicketsRefreshed, refreshed.Type)
	}
	if refreshed.Total != 12 {
		t.Fatalf("expected total 12, got %d", refreshed.Total)
	}

	notifier.NewArrivals(2)
	var arrivals Event
	if err := json.Unmarshal(mustReceiveMessage(t, client.Send, 200*time.Millisecond), &arrivals); err != nil {
		t.Fatalf("decode arrivals event: %v", err)
	}
	if arrivals.Type != EventNewArrivals {
		t.Fatalf("expected %s, got %s", EventNewArrivals, arrivals.Type)
	}
	if arrivals.Count != 2 {
		t.Fatalf("expected count 2, got %d", arrivals.Count)
	}
}

func TestBoardNotifierNilHubIsNoOp(t *testing.T) {
	var notifier *BoardNotifier
	notifier.Refreshed(1, time.Now())
	notifier.NewArrivals(1)
}
