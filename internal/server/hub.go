package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/mindtube/curator/internal/curation"
)

// wsClient is one connected status subscriber.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans run-status updates out to connected websocket clients. Wire
// its Broadcast method as the tracker's notify callback.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	logger *slog.Logger
}

// NewHub creates a hub. Call Run in a goroutine before serving.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}
}

// Run drives the hub's register/broadcast loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow consumer; drop the update rather than block
					// the pipeline's notify path.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast pushes a run snapshot to all subscribers. Safe to call from
// the pipeline goroutine; never blocks.
func (h *Hub) Broadcast(status curation.RunStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		h.logger.Error("marshal status update failed", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}

// HandleConnection serves one websocket subscriber until it disconnects.
func (h *Hub) HandleConnection(c *websocket.Conn) {
	client := &wsClient{
		conn: c,
		send: make(chan []byte, 64),
	}
	h.register <- client
	defer func() { h.unregister <- client }()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.send:
				if !ok {
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}
			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop; we only care about detecting the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
