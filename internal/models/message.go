package models

import "time"

// TradeMessage is a single turn in a trade session's conversation.
type TradeMessage struct {
	ID        int       `db:"id" json:"id"`
	SessionID int       `db:"session_id" json:"session_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	SentAt    time.Time `db:"sent_at" json:"sent_at"`
}

// SessionEvent is broadcast to websocket subscribers of a session.
type SessionEvent struct {
	Type      string        `json:"type"`
	SessionID int           `json:"session_id"`
	Message   *TradeMessage `json:"message,omitempty"`
	Status    MatchStatus   `json:"status,omitempty"`
}

// ReviewPrompt asks ReviewerID to rate RevieweeID after a completed trade.
type ReviewPrompt struct {
	ReviewerID  int       `json:"reviewer_id"`
	RevieweeID  int       `json:"reviewee_id"`
	SessionID   int       `json:"session_id"`
	CompletedBy int       `json:"completed_by"`
	CompletedAt time.Time `json:"completed_at"`
}
