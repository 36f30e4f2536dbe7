package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/scan-order/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	role     string
	tenantID string
}

// Hub holds the kitchen/floor display connections and delivers each tenant's
// events only to that tenant's clients.
type Hub struct {
	clients map[Conn]client
	mutex   sync.Mutex
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]client)}
}

// Register adds a connection. It returns false when the hub is closed.
func (h *Hub) Register(conn Conn, role, tenantID string) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = client{role: role, tenantID: tenantID}
	utils.InfoLogger.WithFields(map[string]interface{}{
		"role":   role,
		"tenant": tenantID,
	}).Info("KDS client connected")
	return true
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount returns how many connections belong to tenantID.
func (h *Hub) ClientCount(tenantID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.tenantID == tenantID {
			n++
		}
	}
	return n
}

// Publish sends an event to every client of the tenant. Connections that fail are dropped.
func (h *Hub) Publish(tenantID, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		if c.tenantID != tenantID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", event, c.role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Close disconnects every client; later registrations are refused.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
	}
	h.clients = make(map[Conn]client)
	h.closed = true
}
