package notify

import (
	"context"
	"encoding/json"
	"sync"
)

// AdminRoom is the room every authenticated admin stream joins.
const AdminRoom = "admin"

type Client struct {
	Send chan []byte
	Room string
	ID   string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans messages out to the websocket clients of a room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Room]; conns != nil {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds c to its room. It is a no-op once the hub is stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Broadcast queues data for every client in room.
func (h *Hub) Broadcast(room string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
	case <-h.quit:
	}
}

// Size reports how many clients are connected to room.
func (h *Hub) Size(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Relay returns a subscriber callback that forwards raw payloads to the admin room.
func Relay(h *Hub) func([]byte) {
	return func(payload []byte) {
		h.Broadcast(AdminRoom, payload)
	}
}

// Local publishes straight into the admin room. It stands in for the Redis
// emitter on single-instance deployments without Redis.
type Local struct {
	Hub *Hub
}

func (l Local) Publish(_ context.Context, _ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	l.Hub.Broadcast(AdminRoom, data)
	return nil
}
