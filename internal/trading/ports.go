package trading

import (
	"context"

	"trade-service/internal/models"
)

// PointsAwarder credits reward points on the external ledger. The
// idempotency key lets the ledger drop retried awards.
type PointsAwarder interface {
	Award(ctx context.Context, userID int, amount int, idempotencyKey string) error
}

// ReviewPrompter queues a pending review for a trade partner.
type ReviewPrompter interface {
	CreatePendingReview(ctx context.Context, prompt models.ReviewPrompt) error
}

// Notifier pushes session activity to connected clients.
type Notifier interface {
	BroadcastMessage(sessionID int, msg models.TradeMessage)
	BroadcastStatus(sessionID int, status models.MatchStatus)
}

// Auditor records session lifecycle events.
type Auditor interface {
	EmitSessionEvent(ctx context.Context, event string, match models.TradeMatch, actorID int)
}
