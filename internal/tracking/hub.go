package tracking

import "sync"

// Hub fans live mission updates out to websocket subscribers. Connections
// subscribe to a single mission; broadcasts go mission-by-mission.
type Hub struct {
	rooms map[uint]map[*Client]struct{}
	mu    sync.RWMutex
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]struct{}),
	}
}

// Subscribe registers a client to a mission room
func (h *Hub) Subscribe(missionID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[missionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[missionID] = room
	}
	room[c] = struct{}{}
}

// Unsubscribe removes a client from its mission room
func (h *Hub) Unsubscribe(missionID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[missionID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, missionID)
	}
}

// Broadcast delivers a message to every subscriber of a mission. Slow
// clients with a full send buffer are dropped rather than blocking the hub.
func (h *Hub) Broadcast(missionID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[missionID] {
		select {
		case c.send <- message:
		default:
			go c.Close()
		}
	}
}

// Subscribers returns the subscriber count for a mission
func (h *Hub) Subscribers(missionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[missionID])
}
