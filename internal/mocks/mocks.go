package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trade-service/internal/geo"
	"trade-service/internal/models"
	"trade-service/internal/repositories"
)

type TradeListRepositoryMock struct {
	mock.Mock
}

func (m *TradeListRepositoryMock) AddEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) (models.TradeListEntry, error) {
	args := m.Called(ctx, userID, cardID, kind)
	var entry models.TradeListEntry
	if val := args.Get(0); val != nil {
		entry = val.(models.TradeListEntry)
	}
	return entry, args.Error(1)
}

func (m *TradeListRepositoryMock) RemoveEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) error {
	args := m.Called(ctx, userID, cardID, kind)
	return args.Error(0)
}

func (m *TradeListRepositoryMock) ListEntries(ctx context.Context, userID int) ([]models.TradeListEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.TradeListEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.TradeListEntry)
	}
	return entries, args.Error(1)
}

func (m *TradeListRepositoryMock) ListEntriesForUsers(ctx context.Context, userIDs []int) ([]models.TradeListEntry, error) {
	args := m.Called(ctx, userIDs)
	var entries []models.TradeListEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.TradeListEntry)
	}
	return entries, args.Error(1)
}

type LocationRepositoryMock struct {
	mock.Mock
}

func (m *LocationRepositoryMock) GetLocation(ctx context.Context, userID int) (models.Location, error) {
	args := m.Called(ctx, userID)
	var loc models.Location
	if val := args.Get(0); val != nil {
		loc = val.(models.Location)
	}
	return loc, args.Error(1)
}

func (m *LocationRepositoryMock) UpsertLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error) {
	args := m.Called(ctx, userID, lat, lng)
	var loc models.Location
	if val := args.Get(0); val != nil {
		loc = val.(models.Location)
	}
	return loc, args.Error(1)
}

func (m *LocationRepositoryMock) ListTradersWithin(ctx context.Context, userID int, box geo.BoundingBox) ([]models.Location, error) {
	args := m.Called(ctx, userID, box)
	var locs []models.Location
	if val := args.Get(0); val != nil {
		locs = val.([]models.Location)
	}
	return locs, args.Error(1)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) GetOrCreateActive(ctx context.Context, userID int, partnerID int) (models.TradeMatch, bool, error) {
	args := m.Called(ctx, userID, partnerID)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Bool(1), args.Error(2)
}

func (m *MatchRepositoryMock) GetMatch(ctx context.Context, matchID int) (models.TradeMatch, error) {
	args := m.Called(ctx, matchID)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) ListMatchesForUser(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error) {
	args := m.Called(ctx, userID, status)
	var matches []models.TradeMatch
	if val := args.Get(0); val != nil {
		matches = val.([]models.TradeMatch)
	}
	return matches, args.Error(1)
}

func (m *MatchRepositoryMock) LatestMatchesWith(ctx context.Context, userID int, partnerIDs []int) ([]models.TradeMatch, error) {
	args := m.Called(ctx, userID, partnerIDs)
	var matches []models.TradeMatch
	if val := args.Get(0); val != nil {
		matches = val.([]models.TradeMatch)
	}
	return matches, args.Error(1)
}

func (m *MatchRepositoryMock) CloseMatch(ctx context.Context, matchID int, status models.MatchStatus, agreement bool, points *int) (models.TradeMatch, error) {
	args := m.Called(ctx, matchID, status, agreement, points)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) MarkAwardsSettled(ctx context.Context, matchID int) error {
	args := m.Called(ctx, matchID)
	return args.Error(0)
}

type TradeMessageRepositoryMock struct {
	mock.Mock
}

func (m *TradeMessageRepositoryMock) AppendMessage(ctx context.Context, sessionID int, senderID int, body string) (models.TradeMessage, error) {
	args := m.Called(ctx, sessionID, senderID, body)
	var msg models.TradeMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.TradeMessage)
	}
	return msg, args.Error(1)
}

func (m *TradeMessageRepositoryMock) ListMessages(ctx context.Context, sessionID int) ([]models.TradeMessage, error) {
	args := m.Called(ctx, sessionID)
	var msgs []models.TradeMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.TradeMessage)
	}
	return msgs, args.Error(1)
}

type PointsAwarderMock struct {
	mock.Mock
}

func (m *PointsAwarderMock) Award(ctx context.Context, userID int, amount int, idempotencyKey string) error {
	args := m.Called(ctx, userID, amount, idempotencyKey)
	return args.Error(0)
}

type ReviewPrompterMock struct {
	mock.Mock
}

func (m *ReviewPrompterMock) CreatePendingReview(ctx context.Context, prompt models.ReviewPrompt) error {
	args := m.Called(ctx, prompt)
	return args.Error(0)
}

var _ repositories.TradeListRepository = (*TradeListRepositoryMock)(nil)
var _ repositories.LocationRepository = (*LocationRepositoryMock)(nil)
var _ repositories.MatchRepository = (*MatchRepositoryMock)(nil)
var _ repositories.TradeMessageRepository = (*TradeMessageRepositoryMock)(nil)
var _ interface {
	Award(ctx context.Context, userID int, amount int, idempotencyKey string) error
} = (*PointsAwarderMock)(nil)
var _ interface {
	CreatePendingReview(ctx context.Context, prompt models.ReviewPrompt) error
} = (*ReviewPrompterMock)(nil)
