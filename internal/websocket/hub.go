// internal/websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"attendance-service/internal/domain/audit"

	"go.uber.org/zap"
)

// Hub fans blocked-proxy alerts out to operator dashboards subscribed to a
// session. Subscriptions are per session id; a client watches exactly one.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.sessionID] == nil {
		h.clients[c.sessionID] = make(map[*Client]bool)
	}
	h.clients[c.sessionID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.clients[c.sessionID]; ok {
		if subs[c] {
			delete(subs, c)
			close(c.send)
		}
		if len(subs) == 0 {
			delete(h.clients, c.sessionID)
		}
	}
}

// BroadcastAlert pushes an alert to every client watching the session.
// Slow clients are dropped rather than allowed to stall the scan path.
// Sends happen under the read lock: unregister closes a client's send
// channel only while holding the write lock, so a disconnecting client
// cannot close the channel mid-send.
func (h *Hub) BroadcastAlert(sessionID string, alert audit.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		h.logger.Error("failed to marshal alert", zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[sessionID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.unregister(c)
	}
}
