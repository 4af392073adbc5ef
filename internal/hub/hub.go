// Package hub fans successful prediction results out to connected
// websocket viewers, so a viewer sees results for uploads made by
// anyone against the same relay.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// writeWait bounds each broadcast write, so one stalled peer cannot
// block the whole fan-out loop.
const writeWait = 10 * time.Second

// ResultEvent is one successful prediction pushed to live viewers.
// Natural dimensions are zero when the upload could not be decoded
// server-side.
type ResultEvent struct {
	Filename      string              `json:"filename"`
	NaturalWidth  int                 `json:"naturalWidth"`
	NaturalHeight int                 `json:"naturalHeight"`
	Predictions   []vision.Prediction `json:"predictions"`
}

// Hub tracks viewer connections and broadcasts result events to all
// of them. All map mutation happens inside Run.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run processes registrations and broadcasts until the process exits.
// Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("viewers", total).Msg("viewer connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("viewers", total).Msg("viewer disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Error().Err(err).Msg("dropping viewer after write error")
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a viewer connection.
func (h *Hub) Register(conn *websocket.Conn) {
	h.register <- conn
}

// Unregister removes a viewer connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}

// Broadcast queues a result event for delivery to every viewer.
func (h *Hub) Broadcast(event ResultEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshal result event")
		return
	}
	h.broadcast <- message
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
