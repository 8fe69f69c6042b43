package live

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/technosupport/ts-dvr-gateway/internal/metrics"
)

const clientBuffer = 32

// Hub fans normalized events out to WebSocket clients. Clients that
// cannot keep up are dropped rather than letting them stall the
// broadcast path.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(msg *EventMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ERROR] live: marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop it.
			h.removeLocked(c)
			log.Printf("[WARN] live: dropping slow stream client")
		}
	}
}

// Register attaches a connection to the hub and starts its writer. The
// caller keeps running the read loop to detect disconnects.
func (h *Hub) Register(conn *websocket.Conn) func() {
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.StreamClients.Set(float64(n))

	go func() {
		for payload := range c.send {
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.mu.Lock()
				h.removeLocked(c)
				h.mu.Unlock()
				return
			}
		}
	}()

	return func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
	}
}

// ClientCount reports the current number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.closed = true
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
	metrics.StreamClients.Set(float64(len(h.clients)))
}
