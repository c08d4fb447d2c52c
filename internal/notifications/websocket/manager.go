package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/notifications"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// ErrBroadcastFull is returned when the hub cannot accept another message.
var ErrBroadcastFull = errors.New("broadcast channel full")

// Manager handles WebSocket connections and pushes request events to them
type Manager struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan notifications.WebSocketMessage
	ConnectedAt time.Time
	UserAgent   string
	IPAddress   string
}

// Hub manages the broadcast of messages to connections. Only the hub
// goroutine closes Send channels.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool
	broadcast   chan notifications.WebSocketMessage
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
	stopOnce    sync.Once
	logger      *zap.Logger
}

// NewManager creates a new WebSocket manager. An empty allowedOrigins list
// accepts any origin.
func NewManager(allowedOrigins []string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan notifications.WebSocketMessage, sendBuffer),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
		logger:      logger,
	}

	go hub.run()

	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &Manager{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// RegisterRoutes mounts the upgrade endpoint
func RegisterRoutes(r *gin.RouterGroup, m *Manager) {
	r.GET("/ws", m.Handle)
}

// Handle upgrades a gin request to a WebSocket connection.
func (m *Manager) Handle(c *gin.Context) {
	if _, err := m.HandleConnection(c.Writer, c.Request); err != nil {
		m.logger.Warn("WebSocket upgrade failed", zap.Error(err))
	}
}

// HandleConnection handles new WebSocket connections
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan notifications.WebSocketMessage, sendBuffer),
		ConnectedAt: time.Now(),
		UserAgent:   r.Header.Get("User-Agent"),
		IPAddress:   r.RemoteAddr,
	}

	select {
	case m.hub.register <- connection:
	case <-m.hub.stop:
		conn.Close()
		return nil, errors.New("websocket manager closed")
	}

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// readPump reads client frames until the connection fails
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		select {
		case m.hub.unregister <- conn:
		case <-m.hub.stop:
		}
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(maxMessageSize)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg notifications.WebSocketMessage
		if err := conn.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("WebSocket read failed", zap.String("connection_id", conn.ID), zap.Error(err))
			}
			return
		}
		m.handleMessage(conn, &msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage answers presence pings; clients have nothing else to say.
func (m *Manager) handleMessage(conn *Connection, msg *notifications.WebSocketMessage) {
	if msg.Type != notifications.WSMessageTypePresence {
		m.logger.Debug("Ignoring client message", zap.String("type", msg.Type))
		return
	}

	response := notifications.WebSocketMessage{
		Type:      notifications.WSMessageTypeStatus,
		Data:      map[string]interface{}{"status": "connected", "connection_id": conn.ID},
		Timestamp: time.Now(),
		Channel:   "private",
	}
	m.hub.sendTo(conn, response)
}

// run runs the hub in its own goroutine
func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			h.logger.Debug("Connection registered", zap.String("connection_id", conn.ID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.connections[conn] {
				delete(h.connections, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			h.logger.Debug("Connection unregistered", zap.String("connection_id", conn.ID))

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.connections {
				select {
				case conn.Send <- message:
				default:
					// slow client
					close(conn.Send)
					delete(h.connections, conn)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for conn := range h.connections {
				close(conn.Send)
				delete(h.connections, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// sendTo queues a message for a single registered connection.
func (h *Hub) sendTo(conn *Connection, msg notifications.WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connections[conn] {
		return
	}
	select {
	case conn.Send <- msg:
	default:
	}
}

// Broadcast sends a message to all connected clients
func (m *Manager) Broadcast(message notifications.WebSocketMessage) error {
	select {
	case m.hub.broadcast <- message:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// Publish implements notifications.Publisher
func (m *Manager) Publish(_ context.Context, event notifications.Event) error {
	return m.Broadcast(notifications.WebSocketMessage{
		Type: notifications.WSMessageTypeNotification,
		Data: map[string]interface{}{
			"event":           event.Type,
			"requestId":       event.RequestID,
			"studentName":     event.StudentName,
			"certificateType": event.CertificateType,
			"status":          event.Status,
			"downloadUrl":     event.DownloadURL,
		},
		Timestamp: event.Timestamp,
		Channel:   "broadcast",
	})
}

// GetConnectionCount returns the number of active connections
func (m *Manager) GetConnectionCount() int {
	m.hub.mu.RLock()
	defer m.hub.mu.RUnlock()
	return len(m.hub.connections)
}

// Close stops the hub; every client receives a close frame.
func (m *Manager) Close() {
	m.hub.stopOnce.Do(func() { close(m.hub.stop) })
}
