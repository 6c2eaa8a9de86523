package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/pkg/middleware/csrf"
	"github.com/Skotchmaster/bakery/pkg/telemetry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

type client struct {
	id     string
	userID uint
	role   models.Role
	conn   *websocket.Conn
	send   chan []byte
}

// Hub pushes order events to connected websocket clients. Admins see every
// event, customers their own orders and drivers the orders assigned to them.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		log: logger.With("component", "ws_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// checkOrigin lets through clients that send no Origin (non-browser) and
// browsers on the API's own origin.
func checkOrigin(r *http.Request) bool {
	return r.Header.Get("Origin") == "" || csrf.SameOrigin(r)
}

func (c *client) sees(e OrderEvent) bool {
	switch c.role {
	case models.RoleAdmin:
		return true
	case models.RoleDriver:
		return e.DriverID != nil && *e.DriverID == c.userID
	default:
		return e.UserID == c.userID
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish never blocks on slow clients; a client with a full buffer is dropped.
func (h *Hub) Publish(_ context.Context, e OrderEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.sees(e) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("ws_client_dropped", "client_id", c.id, "reason", "send buffer full")
		h.unregister(c)
	}
	telemetry.EventPublished("websocket", nil)
	return nil
}

// ServeWS upgrades the request and blocks until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint, role models.Role) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		id:     uuid.NewString(),
		userID: userID,
		role:   role,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("ws_client_connected", "client_id", c.id, "user_id", userID, "role", role)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump only exists to process control frames and notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.log.Info("ws_client_disconnected", "client_id", c.id)
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
