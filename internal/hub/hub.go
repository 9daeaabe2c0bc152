// Package hub pushes measurement progress to browsers over websockets.
package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pulsecam/internal/metrics"
	"pulsecam/internal/models"
	"pulsecam/internal/session"
)

const writeWait = 200 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans tick results out to every connected client. It is both the
// display and the visualizer of a controller.
type Hub struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	traceMu sync.Mutex
	trace   []float64
}

// New creates an empty hub.
func New(log *slog.Logger) *Hub {
	return &Hub{log: log, conns: make(map[*websocket.Conn]bool)}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	n := len(h.conns)
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(n))
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	n := len(h.conns)
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(n))
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) broadcast(msg models.TickMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal tick message", "error", err)
		return
	}

	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
}

// Render implements session.Visualizer. The trace goes out with the next
// tick message.
func (h *Hub) Render(trace []float64) {
	h.traceMu.Lock()
	h.trace = trace
	h.traceMu.Unlock()
}

// Status implements session.Display.
func (h *Hub) Status(status string) {
	h.broadcast(models.TickMessage{Type: "status", Status: status, BPM: "--"})
}

// Tick implements session.Display.
func (h *Hub) Tick(r session.TickResult) {
	h.traceMu.Lock()
	trace := h.trace
	h.trace = nil
	h.traceMu.Unlock()

	sample := r.Sample
	h.broadcast(models.TickMessage{
		Type:             "tick",
		RunID:            r.RunID,
		Sample:           &sample,
		Peak:             r.Peak,
		SecondsRemaining: r.SecondsRemaining,
		Status:           r.Status,
		Timer:            r.Timer,
		Complete:         r.Complete,
		BPM:              r.BPMText,
		Trace:            trace,
	})
}

// ServeWS upgrades the request and keeps the client registered until it
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
