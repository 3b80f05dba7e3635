package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// printerEvent routes an event to the room of one printer
type printerEvent struct {
	PrinterID uuid.UUID
	Event     Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by printer ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *printerEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *printerEvent, 256),
	}
}

// Run starts the hub's main loop until ctx is cancelled.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.printerID] == nil {
				h.rooms[client.printerID] = make(map[*Client]bool)
			}
			h.rooms[client.printerID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.PrinterID] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes client from its room and closes its send channel.
// Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.rooms[client.printerID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.printerID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.drop(client)
		}
	}
}

// BroadcastToPrinter sends an event to all clients watching a printer.
// Events are dropped when the hub is backlogged so print workers never block.
func (h *Hub) BroadcastToPrinter(printerID uuid.UUID, event Event) {
	select {
	case h.broadcast <- &printerEvent{PrinterID: printerID, Event: event}:
	default:
	}
}
