// internal/websocket/hub_test.go
package websocket

import (
	"fmt"
	"sync"
	"testing"

	"attendance-service/internal/domain/audit"

	"go.uber.org/zap"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	// Pumps are not started; the hub only touches the send channel.
	return &Client{
		hub:       hub,
		send:      make(chan []byte, 1),
		sessionID: sessionID,
	}
}

func TestBroadcastDeliversToSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	c1 := newTestClient(hub, "sess-1")
	c2 := newTestClient(hub, "sess-1")
	other := newTestClient(hub, "sess-2")
	hub.register(c1)
	hub.register(c2)
	hub.register(other)

	hub.BroadcastAlert("sess-1", audit.Alert{DeviceID: "E8CD", Type: audit.AlertTypeBlockedProxy})

	for _, c := range []*Client{c1, c2} {
		select {
		case payload := <-c.send:
			if len(payload) == 0 {
				t.Fatal("expected a marshaled alert payload")
			}
		default:
			t.Fatal("expected subscriber to receive the alert")
		}
	}

	select {
	case <-other.send:
		t.Fatal("alert leaked to a different session's subscriber")
	default:
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())

	c := newTestClient(hub, "sess-1")
	hub.register(c)
	c.send <- []byte("backlog") // fill the buffer so the next send would block

	hub.BroadcastAlert("sess-1", audit.Alert{Type: audit.AlertTypeBlockedProxy})

	hub.mu.RLock()
	_, still := hub.clients["sess-1"][c]
	hub.mu.RUnlock()
	if still {
		t.Fatal("expected the slow client to be unregistered")
	}

	// Its channel is drained of the backlog and then closed.
	<-c.send
	if _, open := <-c.send; open {
		t.Fatal("expected the dropped client's channel to be closed")
	}
}

func TestBroadcastRacesDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	alert := audit.Alert{DeviceID: "E8CD", Type: audit.AlertTypeBlockedProxy}

	// Broadcasts racing client disconnects must never send on a channel
	// unregister has already closed.
	for round := 0; round < 200; round++ {
		clients := make([]*Client, 8)
		for i := range clients {
			clients[i] = newTestClient(hub, "sess-1")
			hub.register(clients[i])
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hub.BroadcastAlert("sess-1", alert)
			}
		}()
		go func() {
			defer wg.Done()
			for _, c := range clients {
				hub.unregister(c)
			}
		}()
		wg.Wait()
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	c := newTestClient(hub, "sess-1")
	hub.register(c)
	hub.unregister(c)
	hub.unregister(c) // a second disconnect must not double-close

	hub.mu.RLock()
	_, exists := hub.clients["sess-1"]
	hub.mu.RUnlock()
	if exists {
		t.Fatal("expected empty session entry to be removed")
	}
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newTestClient(hub, fmt.Sprintf("sess-%d", n%4))
			hub.register(c)
			hub.BroadcastAlert(c.sessionID, audit.Alert{Type: audit.AlertTypeBlockedProxy})
			hub.unregister(c)
		}(i)
	}
	wg.Wait()
}
