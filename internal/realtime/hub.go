package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"plenum/internal/platform/metrics"
)

// Hub is the connection registry and broadcaster. Events are marshaled once
// and fanned out to every registered client's bounded queue; delivery to each
// connection is independent, so one dead or slow client cannot block the
// rest.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(log *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
		metrics: m,
	}
}

// Register adds a connection to the broadcast set. Callers register exactly
// once per connection.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.metrics.ConnectionsActive.Inc()
	h.log.Debug("client registered", "conn_id", client.ID)
}

// Unregister removes a connection; no-op if absent.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client]
	if present {
		delete(h.clients, client)
	}
	h.mu.Unlock()
	if present {
		h.metrics.ConnectionsActive.Dec()
		h.log.Debug("client unregistered", "conn_id", client.ID)
	}
}

// Broadcast delivers event to every currently registered connection.
func (h *Hub) Broadcast(event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal broadcast event", "err", err)
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.metrics.BroadcastsTotal.Inc()
	for _, client := range clients {
		if !client.enqueue(frame) {
			h.metrics.FramesDropped.Inc()
			h.log.Warn("dropping frame for slow client", "conn_id", client.ID)
		}
	}
}

// Unicast delivers event to exactly one connection.
func (h *Hub) Unicast(client *Client, event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal unicast event", "err", err)
		return
	}
	if !client.enqueue(frame) {
		h.metrics.FramesDropped.Inc()
		h.log.Warn("dropping frame for slow client", "conn_id", client.ID)
	}
}

// Len reports the current number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
