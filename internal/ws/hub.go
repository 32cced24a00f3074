// Package ws implements the /ws endpoint: a hub that greets new clients and
// fans incoming JSON messages back out to every connected client. Delivery
// is best-effort; slow clients are dropped rather than applying backpressure.
package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/teamsizer/sizeup/internal/metrics"
)

const sendBufferSize = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The frontend is served from arbitrary hosts in dev setups.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type envelope struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the client set. All membership changes and broadcasts go through
// its run loop, so no lock is needed.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			metrics.UpdateWebSocketClients(len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.UpdateWebSocketClients(len(h.clients))
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			metrics.UpdateWebSocketClients(len(h.clients))
		}
	}
}

// Publish implements the service event sink: server-side state changes are
// broadcast in the same update envelope as client messages.
func (h *Hub) Publish(event string, data any) {
	payload, err := json.Marshal(envelope{
		Type: "update",
		Data: map[string]any{"event": event, "payload": data},
	})
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event, err)
		return
	}
	h.broadcast <- payload
}

// Handler upgrades the request and starts the client's pumps. Every new
// client receives a connection greeting before any broadcast traffic.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		log.Printf("WebSocket client connected")

		c := &client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, sendBufferSize),
		}

		greeting, _ := json.Marshal(envelope{
			Type:    "connection",
			Message: "Connected to estimation server",
		})
		c.send <- greeting

		h.register <- c

		go c.writePump()
		go c.readPump()
	}
}

// readPump parses each client message as JSON and rebroadcasts it wrapped in
// an update envelope. Malformed messages are logged and dropped.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
		log.Printf("WebSocket client disconnected")
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var data any
		if err := json.Unmarshal(message, &data); err != nil {
			log.Printf("error parsing message: %v", err)
			continue
		}

		payload, err := json.Marshal(envelope{Type: "update", Data: data})
		if err != nil {
			log.Printf("failed to marshal update: %v", err)
			continue
		}

		c.hub.broadcast <- payload
	}
}

func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
