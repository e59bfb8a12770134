package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/gpio2uinput/internal/engine"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Message is one websocket frame sent to live clients.
type Message struct {
	Type      string          `json:"type"` // "status" or "record"
	Seq       int64           `json:"seq"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Record    *engine.Record  `json:"record,omitempty"`
	Status    json.RawMessage `json:"status,omitempty"`
}

// Hub fans dispatch records out to websocket clients. Clients whose send
// buffer is full are disconnected rather than allowed to stall dispatch.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	seq     int64
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Observe broadcasts r to every connected client without blocking.
func (h *Hub) Observe(r engine.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	h.seq++
	data, err := json.Marshal(Message{
		Type:      "record",
		Seq:       h.seq,
		Timestamp: time.Now().UnixMilli(),
		Record:    &r,
	})
	if err != nil {
		h.logger.Warn("marshal record", "err", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client send buffer full, disconnect
			h.removeLocked(c)
			h.logger.Info("ws client too slow, dropped", "remote", c.remote)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Clients arriving afterwards are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// register adds c and queues the initial status frame. After Close it
// closes c.send instead, so the client's pumps shut the connection down.
func (h *Hub) register(c *client, initial []byte) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		h.logger.Debug("ws client refused, hub closed", "remote", c.remote)
		return false
	}
	h.seq++
	msg, _ := json.Marshal(Message{
		Type:      "status",
		Seq:       h.seq,
		Timestamp: time.Now().UnixMilli(),
		Status:    initial,
	})
	c.send <- msg
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("ws client connected", "remote", c.remote, "total", n)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	h.removeLocked(c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("ws client disconnected", "remote", c.remote, "total", n)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// client is one websocket connection.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: conn.RemoteAddr().String(),
	}
}

// writePump sends queued messages until the hub closes the send channel.
func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.hub.unregister(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// readPump discards client messages and unregisters on the first error.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
