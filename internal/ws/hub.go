package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trade-service/internal/models"
	"trade-service/internal/observability"
)

const (
	routingKey          = "ws_events.trade_sessions"
	defaultWriteTimeout = 5 * time.Second
)

type client struct {
	conn    *websocket.Conn
	info    ConnInfo
	timeout time.Duration
	wmu     sync.Mutex
}

// write fails once the peer stops draining for longer than the client's timeout.
func (c *client) write(payload []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains one websocket room per trade session.
type Hub struct {
	rooms        map[int]map[*websocket.Conn]*client
	mu           sync.RWMutex
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:        make(map[int]map[*websocket.Conn]*client),
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
	}
}

// AddClient registers a websocket connection to a session room.
func (h *Hub) AddClient(sessionID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[sessionID]; !ok {
		h.rooms[sessionID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[sessionID][conn] = &client{conn: conn, info: info, timeout: h.writeTimeout}
}

// RemoveClient removes a websocket connection from a session room.
func (h *Hub) RemoveClient(sessionID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

// RoomSize reports how many connections watch a session.
func (h *Hub) RoomSize(sessionID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastMessage sends a new message to everyone watching the session.
func (h *Hub) BroadcastMessage(sessionID int, msg models.TradeMessage) {
	h.broadcast(sessionID, models.SessionEvent{Type: "message", SessionID: sessionID, Message: &msg})
}

// BroadcastStatus notifies watchers that the session changed state.
func (h *Hub) BroadcastStatus(sessionID int, status models.MatchStatus) {
	h.broadcast(sessionID, models.SessionEvent{Type: "status", SessionID: sessionID, Status: status})
}

func (h *Hub) broadcast(sessionID int, event models.SessionEvent) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[sessionID]))
	for _, c := range h.rooms[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal session event", zap.Int("session_id", sessionID), zap.Error(err))
		return
	}
	for _, c := range clients {
		if err := c.write(payload); err != nil {
			h.logger.Warn("websocket write error",
				zap.Int("session_id", sessionID),
				zap.String("conn_id", c.info.ConnID),
				zap.Error(err),
			)
			c.conn.Close()
			h.RemoveClient(sessionID, c.conn)
			h.publish(context.Background(), sessionID, c.info, "ws_error", err.Error())
		}
	}
}

func (h *Hub) publish(ctx context.Context, sessionID int, info ConnInfo, event, reason string) {
	observability.IncWSEvent(event)
	_ = observability.PublishEvent(ctx, routingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload:   info.payload(sessionID, event, reason),
	})
}
