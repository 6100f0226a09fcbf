package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// EventType labels a board broadcast.
type EventType string

const (
	// EventTicketsRefreshed fires after every successful poll.
	EventTicketsRefreshed EventType = "tickets_refreshed"
	// EventNewArrivals fires when unseen pending tickets appeared on a
	// background poll.
	EventNewArrivals EventType = "new_arrivals"
)

// Event is the wire shape of a board broadcast.
type Event struct {
	Type      EventType  `json:"type"`
	Total     int        `json:"total,omitempty"`
	Count     int        `json:"count,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Hub manages active clients and fans broadcasts out to all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub builds a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- payload:
				default:
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// Broadcast sends a raw payload to every connected client.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// BroadcastEvent marshals and broadcasts a typed event.
func (h *Hub) BroadcastEvent(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Client represents a websocket connection.
type Client struct {
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte
}

// NewClient returns a client ready for registration.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Hub:  hub,
		Send: make(chan []byte, 256),
	}
}

// BoardNotifier bridges the sync engine's notifications onto the hub.
type BoardNotifier struct {
	Hub *Hub
}

func (n *BoardNotifier) Refreshed(total int, updatedAt time.Time) {
	if n == nil || n.Hub == nil {
		return
	}
	_ = n.Hub.BroadcastEvent(Event{Type: EventTicketsRefreshed, Total: total, UpdatedAt: &updatedAt})
}

func (n *BoardNotifier) NewArrivals(count int) {
	if n == nil || n.Hub == nil {
		return
	}
	_ = n.Hub.BroadcastEvent(Event{Type: EventNewArrivals, Count: count})
}
