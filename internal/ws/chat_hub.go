package ws

import (
	"encoding/json"
	"strings"
	"sync"
)

// ChatRoom is one room per identity pair.
type ChatRoom struct {
	Key     string
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

func newChatRoom(key string) *ChatRoom {
	return &ChatRoom{Key: key, clients: make(map[*Client]struct{})}
}

func (r *ChatRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *ChatRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *ChatRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast sends payload to everyone in the room except from.
func (r *ChatRoom) Broadcast(from *Client, payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		c.TrySend(data)
	}
}

// ChatHub holds all chat rooms keyed by identity pair.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[string]*ChatRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[string]*ChatRoom)}
}

// PairKey is order-independent, so both participants land in one room.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (h *ChatHub) GetOrCreateRoom(a, b string) *ChatRoom {
	key := PairKey(a, b)
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[key]; ok {
		return r
	}
	r := newChatRoom(key)
	h.rooms[key] = r
	return r
}

func (h *ChatHub) RemoveRoomIfEmpty(room *ChatRoom) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room.ClientCount() == 0 {
		delete(h.rooms, room.Key)
	}
}

// Peers extracts the two identities from a room key.
func Peers(key string) (string, string) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}
