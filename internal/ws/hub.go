package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection with its identity.
type Client struct {
	Identity string
	Send     chan []byte
	Hub      *Hub // set so Close() can unregister; may be nil for chat rooms
	mu       sync.Mutex
	closed   bool
}

func NewClient(identity string) *Client {
	return &Client{
		Identity: identity,
		Send:     make(chan []byte, 256),
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
}

// TrySend queues data unless the client is closed or its buffer is full.
// Checking closed under the lock keeps a concurrent Close from racing the
// send into a closed channel.
func (c *Client) TrySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub is the registry of live map connections by identity. Events that must
// reach a user regardless of which screen they are on (chat notifications)
// fan out here; one identity can hold multiple connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// identity -> clients (one identity can hold multiple connections)
	byIdentity map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		byIdentity: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	h.clients[c] = struct{}{}
	if h.byIdentity[c.Identity] == nil {
		h.byIdentity[c.Identity] = make(map[*Client]struct{})
	}
	h.byIdentity[c.Identity][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byIdentity[c.Identity]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byIdentity, c.Identity)
		}
	}
}

func (h *Hub) BroadcastToIdentity(identity string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.byIdentity[identity]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.TrySend(data)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
