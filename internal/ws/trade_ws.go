package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trade-service/internal/middleware"
	"trade-service/internal/models"
	"trade-service/internal/observability"
	"trade-service/internal/trading"
)

type sessionReader interface {
	Get(ctx context.Context, sessionID, requesterID int) (models.TradeMatch, error)
}

// SessionWebSocketHandler streams a trade session's messages and status changes.
type SessionWebSocketHandler struct {
	hub       *Hub
	sessions  sessionReader
	validator middleware.TokenValidator
}

// NewSessionWebSocketHandler constructs a SessionWebSocketHandler.
func NewSessionWebSocketHandler(hub *Hub, sessions sessionReader, validator middleware.TokenValidator) *SessionWebSocketHandler {
	return &SessionWebSocketHandler{hub: hub, sessions: sessions, validator: validator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the session room.
func (h *SessionWebSocketHandler) Handle(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	ctx, span := otel.Tracer("trade-service/ws").Start(c.Request.Context(), "ws.handshake", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	userID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.sessions.Get(ctx, sessionID, userID); err != nil {
		switch {
		case errors.Is(err, trading.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "trade session not found"})
		case errors.Is(err, trading.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this trade session"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trade session"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	identity := observability.IdentityFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    identity.DeviceID,
		IP:          identity.IP,
		RequestID:   identity.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(sessionID, conn, info)
	observability.IncWSActive()
	h.hub.publish(ctx, sessionID, info, "ws_connect", "")

	// Clients only listen; reads detect the close.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(sessionID, conn)
			observability.DecWSActive()
			h.hub.publish(context.Background(), sessionID, info, "ws_disconnect", closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.hub.publish(context.Background(), sessionID, info, "ws_error", closeReason)
				}
				return
			}
		}
	}()
}
