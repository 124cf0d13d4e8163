package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/metrics"
)

// Hub tracks which clients are subscribed to which chat rooms. A single
// connection can join any number of rooms, so membership lives in a
// mutex-guarded index rather than one goroutine per room.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[uuid.UUID]map[*Client]struct{}
	clients map[*Client]map[uuid.UUID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[*Client]struct{}),
		clients: make(map[*Client]map[uuid.UUID]struct{}),
	}
}

// Register adds a connected client to the hub's index.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		return
	}
	h.clients[c] = make(map[uuid.UUID]struct{})
	metrics.WsConnections.Inc()
}

// Unregister drops the client from every room and closes its send
// channel. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	for chatID := range rooms {
		delete(h.rooms[chatID], c)
		if len(h.rooms[chatID]) == 0 {
			delete(h.rooms, chatID)
		}
	}
	delete(h.clients, c)
	c.closeSend()
	metrics.WsConnections.Dec()
}

// Join subscribes a registered client to a chat room.
func (h *Hub) Join(chatID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	rooms[chatID] = struct{}{}
	if h.rooms[chatID] == nil {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][c] = struct{}{}
}

// Leave unsubscribes a client from one room without disconnecting it.
func (h *Hub) Leave(chatID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rooms, ok := h.clients[c]; ok {
		delete(rooms, chatID)
	}
	delete(h.rooms[chatID], c)
	if len(h.rooms[chatID]) == 0 {
		delete(h.rooms, chatID)
	}
}

// Broadcast delivers a payload to every subscriber of a room, except the
// excluded client when one is given. A client whose send buffer is full
// is disconnected; a stalled reader must not block the room.
func (h *Hub) Broadcast(chatID uuid.UUID, payload []byte, exclude *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[chatID] {
		if c == exclude {
			continue
		}
		if !c.trySend(payload) {
			h.removeLocked(c)
		}
	}
}

// InRoom reports whether a client has joined a room.
func (h *Hub) InRoom(chatID uuid.UUID, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[chatID][c]
	return ok
}

// RoomSize reports how many clients are subscribed to a room.
func (h *Hub) RoomSize(chatID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
