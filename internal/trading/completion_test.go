package trading

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trade-service/internal/mocks"
	"trade-service/internal/models"
)

func completedMatch() models.TradeMatch {
	closed := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	return models.TradeMatch{ID: 9, User1ID: 3, User2ID: 8, Status: models.StatusCompleted, ClosedAt: &closed}
}

func TestOnCompleteAwardsBothAndPromptsReviews(t *testing.T) {
	points := new(mocks.PointsAwarderMock)
	reviews := new(mocks.ReviewPrompterMock)
	coord := NewCompletionCoordinator(points, reviews, nil)
	match := completedMatch()

	points.On("Award", mock.Anything, 3, 40, "trade-session:9:user:3").Return(nil).Once()
	points.On("Award", mock.Anything, 8, 40, "trade-session:9:user:8").Return(nil).Once()
	reviews.On("CreatePendingReview", mock.Anything, models.ReviewPrompt{
		ReviewerID: 3, RevieweeID: 8, SessionID: 9, CompletedBy: 8, CompletedAt: *match.ClosedAt,
	}).Return(nil).Once()
	reviews.On("CreatePendingReview", mock.Anything, models.ReviewPrompt{
		ReviewerID: 8, RevieweeID: 3, SessionID: 9, CompletedBy: 8, CompletedAt: *match.ClosedAt,
	}).Return(nil).Once()

	require.NoError(t, coord.OnComplete(context.Background(), match, 8, 40))
	coord.Wait()

	points.AssertExpectations(t)
	reviews.AssertExpectations(t)
}

func TestOnCompleteZeroPointsSkipsLedger(t *testing.T) {
	points := new(mocks.PointsAwarderMock)
	reviews := new(mocks.ReviewPrompterMock)
	coord := NewCompletionCoordinator(points, reviews, nil)

	reviews.On("CreatePendingReview", mock.Anything, mock.Anything).Return(nil).Twice()

	require.NoError(t, coord.OnComplete(context.Background(), completedMatch(), 3, 0))
	coord.Wait()

	points.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	reviews.AssertExpectations(t)
}

func TestOnCompleteReviewFailureIsSuppressed(t *testing.T) {
	points := new(mocks.PointsAwarderMock)
	reviews := new(mocks.ReviewPrompterMock)
	coord := NewCompletionCoordinator(points, reviews, nil)

	points.On("Award", mock.Anything, mock.Anything, 5, mock.Anything).Return(nil).Twice()
	reviews.On("CreatePendingReview", mock.Anything, mock.Anything).Return(assert.AnError).Twice()

	require.NoError(t, coord.OnComplete(context.Background(), completedMatch(), 3, 5))
	coord.Wait()

	reviews.AssertExpectations(t)
}

func TestOnCompleteReviewsOutliveRequestContext(t *testing.T) {
	reviews := new(mocks.ReviewPrompterMock)
	coord := NewCompletionCoordinator(nil, reviews, nil)

	var seen []error
	reviews.On("CreatePendingReview", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seen = append(seen, args.Get(0).(context.Context).Err())
		}).Return(nil).Twice()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, coord.OnComplete(ctx, completedMatch(), 3, 0))
	cancel()
	coord.Wait()

	assert.Equal(t, []error{nil, nil}, seen)
}

func TestOnCompleteAwardFailureStillPromptsReviews(t *testing.T) {
	points := new(mocks.PointsAwarderMock)
	reviews := new(mocks.ReviewPrompterMock)
	coord := NewCompletionCoordinator(points, reviews, nil)

	points.On("Award", mock.Anything, 3, 5, mock.Anything).Return(nil).Once()
	points.On("Award", mock.Anything, 8, 5, mock.Anything).Return(assert.AnError).Once()
	reviews.On("CreatePendingReview", mock.Anything, mock.Anything).Return(nil).Twice()

	err := coord.OnComplete(context.Background(), completedMatch(), 3, 5)
	require.ErrorIs(t, err, ErrCollaborator)
	assert.Contains(t, err.Error(), "user 8")

	coord.Wait()
	reviews.AssertExpectations(t)
}

func TestSettleAwardsReusesKeys(t *testing.T) {
	points := new(mocks.PointsAwarderMock)
	coord := NewCompletionCoordinator(points, nil, nil)

	points.On("Award", mock.Anything, 3, 7, "trade-session:9:user:3").Return(nil).Twice()
	points.On("Award", mock.Anything, 8, 7, "trade-session:9:user:8").Return(nil).Twice()

	require.NoError(t, coord.SettleAwards(context.Background(), completedMatch(), 7))
	require.NoError(t, coord.SettleAwards(context.Background(), completedMatch(), 7))
	require.NoError(t, coord.SettleAwards(context.Background(), completedMatch(), 0))

	points.AssertExpectations(t)
}
