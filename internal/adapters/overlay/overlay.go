// Package overlay pushes blur commands to display collaborators (GUI,
// browser extension) over WebSocket connections.
package overlay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/surfguard/surfguard/pkg/logger"
)

const writeWait = 10 * time.Second

// command is the JSON record pushed to every connected client.
type command struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

// WSHub broadcasts blur commands to all connected overlay clients. Calls
// are fire-and-forget: a dead client is dropped, never retried.
type WSHub struct {
	upgrader websocket.Upgrader
	logger   logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWSHub creates an overlay broadcast hub.
func NewWSHub() *WSHub {
	return &WSHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger.Named("overlay"),
	}
}

// HandleWS upgrades an overlay client connection and registers it.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info(r.Context(), "overlay client connected", logger.Int("clients", n))

	// Reader loop exists only to observe close; overlay clients never
	// send payloads the core consumes.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Enable tells all clients to show the blur overlay.
func (h *WSHub) Enable() { h.broadcast(command{Action: "enable"}) }

// Disable tells all clients to hide the blur overlay.
func (h *WSHub) Disable() { h.broadcast(command{Action: "disable"}) }

// SetIntensity forwards the blur kernel size.
func (h *WSHub) SetIntensity(n int) {
	h.broadcast(command{Action: "set_intensity", Value: float64(n)})
}

// SetOpacity forwards the overlay opacity.
func (h *WSHub) SetOpacity(f float64) {
	h.broadcast(command{Action: "set_opacity", Value: f})
}

// ClientCount returns the number of connected overlay clients.
func (h *WSHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *WSHub) broadcast(cmd command) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(cmd); err != nil {
			h.logger.Warn(context.Background(), "overlay client write failed, dropping",
				logger.Error(err),
			)
			h.drop(conn)
		}
	}
}

func (h *WSHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
