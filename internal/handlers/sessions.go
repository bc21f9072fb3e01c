package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-service/internal/models"
	"trade-service/internal/trading"
)

type sessionService interface {
	GetOrCreate(ctx context.Context, userID, partnerID int) (models.TradeMatch, error)
	Get(ctx context.Context, sessionID, requesterID int) (models.TradeMatch, error)
	List(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error)
	Cancel(ctx context.Context, sessionID, actorID int) (models.TradeMatch, error)
	Complete(ctx context.Context, sessionID, actorID, points int) (models.TradeMatch, error)
}

type messageService interface {
	Append(ctx context.Context, sessionID, senderID int, body string) (models.TradeMessage, error)
	ListFor(ctx context.Context, sessionID, requesterID int) ([]models.TradeMessage, models.MatchStatus, error)
}

// SessionHandler manages trade session endpoints.
type SessionHandler struct {
	sessions sessionService
	messages messageService
	logger   *zap.Logger
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(sessions sessionService, messages messageService, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, messages: messages, logger: logger}
}

// ListSessions returns the caller's sessions, optionally filtered by status.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var status models.MatchStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseMatchStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = parsed
	}

	sessions, err := h.sessions.List(c.Request.Context(), c.GetInt("userID"), status)
	if err != nil {
		writeError(c, err, "failed to load trade sessions")
		return
	}
	if sessions == nil {
		sessions = []models.TradeMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// StartSession opens, or returns the open, session with a partner.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		PartnerID int `json:"partner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.GetOrCreate(c.Request.Context(), c.GetInt("userID"), req.PartnerID)
	if err != nil {
		writeError(c, err, "could not start trade session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession returns one session visible to the caller.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), sessionID, c.GetInt("userID"))
	if err != nil {
		writeError(c, err, "failed to load trade session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetMessages returns the session's conversation oldest first.
func (h *SessionHandler) GetMessages(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	msgs, status, err := h.messages.ListFor(c.Request.Context(), sessionID, c.GetInt("userID"))
	if err != nil {
		writeError(c, err, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []models.TradeMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "messages": msgs})
}

// PostMessage appends a message to an active session.
func (h *SessionHandler) PostMessage(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), sessionID, c.GetInt("userID"), req.Body)
	if err != nil {
		writeError(c, err, "failed to store message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// CompleteSession closes the session with agreement and awards points.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req struct {
		PointsAwarded int `json:"points_awarded"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	userID := c.GetInt("userID")
	session, err := h.sessions.Complete(c.Request.Context(), sessionID, userID, req.PointsAwarded)
	if errors.Is(err, trading.ErrCollaborator) {
		// the session is closed; only the award failed
		h.logger.Error("points award failed", zap.Int("session_id", sessionID), zap.Int("actor_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "session": session})
		return
	}
	if err != nil {
		writeError(c, err, "could not complete trade session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelSession closes the session without agreement.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Cancel(c.Request.Context(), sessionID, c.GetInt("userID"))
	if err != nil {
		writeError(c, err, "could not cancel trade session")
		return
	}
	c.JSON(http.StatusOK, session)
}
