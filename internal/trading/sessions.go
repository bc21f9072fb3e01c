package trading

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trade-service/internal/models"
	"trade-service/internal/observability"
	"trade-service/internal/repositories"
)

// SessionManager owns the trade session state machine:
// ACTIVE -> COMPLETED | CANCELLED, each terminal state reached once.
type SessionManager struct {
	matches    repositories.MatchRepository
	completion *CompletionCoordinator
	notifier   Notifier
	audit      Auditor
	logger     *zap.Logger
}

// NewSessionManager builds a SessionManager. notifier and audit may be nil.
func NewSessionManager(matches repositories.MatchRepository, completion *CompletionCoordinator, notifier Notifier, audit Auditor, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{matches: matches, completion: completion, notifier: notifier, audit: audit, logger: logger}
}

// GetOrCreate returns the ACTIVE session between the two users, creating it if needed.
func (s *SessionManager) GetOrCreate(ctx context.Context, userID, partnerID int) (models.TradeMatch, error) {
	if userID <= 0 || partnerID <= 0 {
		return models.TradeMatch{}, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if userID == partnerID {
		return models.TradeMatch{}, fmt.Errorf("%w: cannot trade with yourself", ErrValidation)
	}

	match, created, err := s.matches.GetOrCreateActive(ctx, userID, partnerID)
	if errors.Is(err, repositories.ErrSelfMatch) {
		return models.TradeMatch{}, fmt.Errorf("%w: cannot trade with yourself", ErrValidation)
	}
	if err != nil {
		return models.TradeMatch{}, fmt.Errorf("get or create session: %w", err)
	}

	if created {
		observability.IncSessionTransition(string(models.StatusActive))
		s.emit(ctx, "trade_session_created", match, userID)
		s.logger.Info("trade session created", zap.Int("session_id", match.ID), zap.Int("user1_id", match.User1ID), zap.Int("user2_id", match.User2ID))
	}
	return match, nil
}

// Get returns a session visible to requesterID.
func (s *SessionManager) Get(ctx context.Context, sessionID, requesterID int) (models.TradeMatch, error) {
	match, err := s.matches.GetMatch(ctx, sessionID)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return models.TradeMatch{}, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return models.TradeMatch{}, fmt.Errorf("load session: %w", err)
	}
	if !match.HasParticipant(requesterID) {
		return models.TradeMatch{}, ErrForbidden
	}
	return match, nil
}

// List returns the user's sessions; an empty status lists all of them.
func (s *SessionManager) List(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error) {
	matches, err := s.matches.ListMatchesForUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return matches, nil
}

// Cancel closes the session without agreement. No points are awarded.
func (s *SessionManager) Cancel(ctx context.Context, sessionID, actorID int) (models.TradeMatch, error) {
	if _, err := s.loadForTransition(ctx, sessionID, actorID); err != nil {
		return models.TradeMatch{}, err
	}

	match, err := s.close(ctx, sessionID, models.StatusCancelled, false, nil)
	if err != nil {
		return models.TradeMatch{}, err
	}
	s.afterClose(ctx, match, actorID, "trade_session_cancelled")
	return match, nil
}

// Complete closes the session with agreement and awards points to both
// participants. The first participant to call wins. While the awards of a
// COMPLETED session are unsettled, a later Complete re-drives them with the
// stored points; once settled, later calls see InvalidState.
func (s *SessionManager) Complete(ctx context.Context, sessionID, actorID, points int) (models.TradeMatch, error) {
	if points < 0 {
		return models.TradeMatch{}, fmt.Errorf("%w: points must not be negative", ErrValidation)
	}
	current, err := s.Get(ctx, sessionID, actorID)
	if err != nil {
		return models.TradeMatch{}, err
	}
	if current.Status == models.StatusCompleted && !current.AwardsSettled {
		return s.resettle(ctx, current, actorID)
	}
	if current.Status.Terminal() {
		return models.TradeMatch{}, fmt.Errorf("%w: session is %s", ErrInvalidState, current.Status)
	}

	match, err := s.close(ctx, sessionID, models.StatusCompleted, true, &points)
	if err != nil {
		return models.TradeMatch{}, err
	}
	s.afterClose(ctx, match, actorID, "trade_session_completed")

	if s.completion != nil {
		if err := s.completion.OnComplete(ctx, match, actorID, points); err != nil {
			return match, err
		}
	}
	return s.markSettled(ctx, match), nil
}

func (s *SessionManager) resettle(ctx context.Context, match models.TradeMatch, actorID int) (models.TradeMatch, error) {
	points := 0
	if match.PointsAwarded != nil {
		points = *match.PointsAwarded
	}
	s.logger.Info("retrying trade point awards", zap.Int("session_id", match.ID), zap.Int("actor_id", actorID))
	if s.completion != nil {
		if err := s.completion.SettleAwards(ctx, match, points); err != nil {
			return match, err
		}
	}
	return s.markSettled(ctx, match), nil
}

func (s *SessionManager) markSettled(ctx context.Context, match models.TradeMatch) models.TradeMatch {
	if err := s.matches.MarkAwardsSettled(ctx, match.ID); err != nil {
		// the next Complete re-drives the awards under the same keys
		s.logger.Warn("mark awards settled failed", zap.Int("session_id", match.ID), zap.Error(err))
		return match
	}
	match.AwardsSettled = true
	return match
}

func (s *SessionManager) loadForTransition(ctx context.Context, sessionID, actorID int) (models.TradeMatch, error) {
	match, err := s.Get(ctx, sessionID, actorID)
	if err != nil {
		return models.TradeMatch{}, err
	}
	if match.Status.Terminal() {
		return models.TradeMatch{}, fmt.Errorf("%w: session is %s", ErrInvalidState, match.Status)
	}
	return match, nil
}

func (s *SessionManager) close(ctx context.Context, sessionID int, status models.MatchStatus, agreement bool, points *int) (models.TradeMatch, error) {
	match, err := s.matches.CloseMatch(ctx, sessionID, status, agreement, points)
	if errors.Is(err, repositories.ErrMatchNotActive) {
		// a concurrent close won between our read and the conditional update
		return models.TradeMatch{}, ErrInvalidState
	}
	if err != nil {
		return models.TradeMatch{}, fmt.Errorf("close session: %w", err)
	}
	return match, nil
}

func (s *SessionManager) afterClose(ctx context.Context, match models.TradeMatch, actorID int, event string) {
	observability.IncSessionTransition(string(match.Status))
	if s.notifier != nil {
		s.notifier.BroadcastStatus(match.ID, match.Status)
	}
	s.emit(ctx, event, match, actorID)
	s.logger.Info("trade session closed", zap.Int("session_id", match.ID), zap.String("status", string(match.Status)), zap.Int("actor_id", actorID))
}

func (s *SessionManager) emit(ctx context.Context, event string, match models.TradeMatch, actorID int) {
	if s.audit == nil {
		return
	}
	s.audit.EmitSessionEvent(ctx, event, match, actorID)
}
