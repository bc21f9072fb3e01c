package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"trade-service/internal/models"
)

var ErrSessionClosed = errors.New("trade session not open for messages")

// TradeMessageRepository defines the append-only message log of trade sessions.
type TradeMessageRepository interface {
	AppendMessage(ctx context.Context, sessionID int, senderID int, body string) (models.TradeMessage, error)
	ListMessages(ctx context.Context, sessionID int) ([]models.TradeMessage, error)
}

// TradeMessageRepo is a sqlx-backed repository.
type TradeMessageRepo struct {
	db *sqlx.DB
}

// NewTradeMessageRepo constructs TradeMessageRepo.
func NewTradeMessageRepo(db *sqlx.DB) *TradeMessageRepo {
	return &TradeMessageRepo{db: db}
}

// AppendMessage stores a message only while the session is ACTIVE and the
// sender is a participant. The session row is locked by the UPDATE, which
// serializes appends against each other and against CloseMatch.
func (r *TradeMessageRepo) AppendMessage(ctx context.Context, sessionID int, senderID int, body string) (models.TradeMessage, error) {
	var msg models.TradeMessage
	err := r.db.GetContext(ctx, &msg, `WITH touched AS (
            UPDATE trade_matches SET last_activity_at = NOW()
            WHERE id=$1 AND status='ACTIVE' AND (user1_id=$2 OR user2_id=$2)
            RETURNING id
        )
        INSERT INTO trade_messages (session_id, sender_id, body)
        SELECT id, $2, $3 FROM touched
        RETURNING id, session_id, sender_id, body, sent_at`, sessionID, senderID, body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TradeMessage{}, ErrSessionClosed
	}
	return msg, err
}

// ListMessages returns the session's messages in append order.
func (r *TradeMessageRepo) ListMessages(ctx context.Context, sessionID int) ([]models.TradeMessage, error) {
	msgs := []models.TradeMessage{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, session_id, sender_id, body, sent_at FROM trade_messages
        WHERE session_id=$1 ORDER BY sent_at ASC, id ASC`, sessionID)
	return msgs, err
}
