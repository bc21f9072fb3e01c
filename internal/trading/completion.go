package trading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"trade-service/internal/models"
	"trade-service/internal/observability"
)

const reviewEnqueueTimeout = 10 * time.Second

// CompletionCoordinator applies the side effects of a completed trade.
type CompletionCoordinator struct {
	points  PointsAwarder
	reviews ReviewPrompter
	logger  *zap.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewCompletionCoordinator builds a CompletionCoordinator.
func NewCompletionCoordinator(points PointsAwarder, reviews ReviewPrompter, logger *zap.Logger) *CompletionCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionCoordinator{points: points, reviews: reviews, logger: logger, now: time.Now}
}

// OnComplete queues review prompts in the background, then awards points to
// both participants. Only award failures are returned; the prompts are queued
// either way.
func (c *CompletionCoordinator) OnComplete(ctx context.Context, match models.TradeMatch, actorID int, points int) error {
	c.enqueueReviews(ctx, match, actorID)
	return c.SettleAwards(ctx, match, points)
}

// SettleAwards credits both participants under per-user idempotency keys, so
// re-running it for the same session never double-credits.
func (c *CompletionCoordinator) SettleAwards(ctx context.Context, match models.TradeMatch, points int) error {
	if points <= 0 || c.points == nil {
		return nil
	}
	for _, userID := range []int{match.User1ID, match.User2ID} {
		key := fmt.Sprintf("trade-session:%d:user:%d", match.ID, userID)
		if err := c.points.Award(ctx, userID, points, key); err != nil {
			c.logger.Error("award trade points failed", zap.Int("session_id", match.ID), zap.Int("user_id", userID), zap.Error(err))
			return fmt.Errorf("%w: award points to user %d: %v", ErrCollaborator, userID, err)
		}
	}
	return nil
}

// Wait blocks until queued review prompts have been handed off.
func (c *CompletionCoordinator) Wait() {
	c.wg.Wait()
}

func (c *CompletionCoordinator) enqueueReviews(ctx context.Context, match models.TradeMatch, actorID int) {
	if c.reviews == nil {
		return
	}
	completedAt := c.now().UTC()
	if match.ClosedAt != nil {
		completedAt = match.ClosedAt.UTC()
	}
	prompts := []models.ReviewPrompt{
		{ReviewerID: match.User1ID, RevieweeID: match.User2ID, SessionID: match.ID, CompletedBy: actorID, CompletedAt: completedAt},
		{ReviewerID: match.User2ID, RevieweeID: match.User1ID, SessionID: match.ID, CompletedBy: actorID, CompletedAt: completedAt},
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), reviewEnqueueTimeout)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		for _, p := range prompts {
			if err := c.reviews.CreatePendingReview(bg, p); err != nil {
				observability.IncReviewPromptError()
				c.logger.Warn("enqueue review prompt failed",
					zap.Int("session_id", p.SessionID),
					zap.Int("reviewer_id", p.ReviewerID),
					zap.Int("reviewee_id", p.RevieweeID),
					zap.Error(err))
			}
		}
	}()
}
