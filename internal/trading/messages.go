package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"trade-service/internal/models"
	"trade-service/internal/observability"
	"trade-service/internal/repositories"
)

// MaxMessageLength caps a single message body, in characters.
const MaxMessageLength = 2000

// MessageLog is the per-session conversation, readable and writable only by
// the two participants.
type MessageLog struct {
	matches  repositories.MatchRepository
	messages repositories.TradeMessageRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewMessageLog builds a MessageLog. notifier may be nil.
func NewMessageLog(matches repositories.MatchRepository, messages repositories.TradeMessageRepository, notifier Notifier, logger *zap.Logger) *MessageLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageLog{matches: matches, messages: messages, notifier: notifier, logger: logger}
}

// Append stores a message from senderID on an ACTIVE session.
func (l *MessageLog) Append(ctx context.Context, sessionID, senderID int, body string) (models.TradeMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.TradeMessage{}, fmt.Errorf("%w: message body is empty", ErrValidation)
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return models.TradeMessage{}, fmt.Errorf("%w: message longer than %d characters", ErrValidation, MaxMessageLength)
	}

	match, err := l.participantSession(ctx, sessionID, senderID)
	if err != nil {
		return models.TradeMessage{}, err
	}
	if match.Status != models.StatusActive {
		return models.TradeMessage{}, ErrSessionNotActive
	}

	msg, err := l.messages.AppendMessage(ctx, sessionID, senderID, body)
	if errors.Is(err, repositories.ErrSessionClosed) {
		return models.TradeMessage{}, ErrSessionNotActive
	}
	if err != nil {
		return models.TradeMessage{}, fmt.Errorf("store message: %w", err)
	}

	observability.IncTradeMessage()
	if l.notifier != nil {
		l.notifier.BroadcastMessage(sessionID, msg)
	}
	return msg, nil
}

// ListFor returns every message of the session oldest first, with the
// session's current status.
func (l *MessageLog) ListFor(ctx context.Context, sessionID, requesterID int) ([]models.TradeMessage, models.MatchStatus, error) {
	match, err := l.participantSession(ctx, sessionID, requesterID)
	if err != nil {
		return nil, "", err
	}
	msgs, err := l.messages.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("load messages: %w", err)
	}
	return msgs, match.Status, nil
}

func (l *MessageLog) participantSession(ctx context.Context, sessionID, userID int) (models.TradeMatch, error) {
	match, err := l.matches.GetMatch(ctx, sessionID)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return models.TradeMatch{}, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return models.TradeMatch{}, fmt.Errorf("load session: %w", err)
	}
	if !match.HasParticipant(userID) {
		return models.TradeMatch{}, ErrForbidden
	}
	return match, nil
}
