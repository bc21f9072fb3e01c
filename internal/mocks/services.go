package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trade-service/internal/models"
)

type ListServiceMock struct {
	mock.Mock
}

func (m *ListServiceMock) AddEntry(ctx context.Context, userID, cardID int, kind models.ListKind) (models.TradeListEntry, error) {
	args := m.Called(ctx, userID, cardID, kind)
	var entry models.TradeListEntry
	if val := args.Get(0); val != nil {
		entry = val.(models.TradeListEntry)
	}
	return entry, args.Error(1)
}

func (m *ListServiceMock) RemoveEntry(ctx context.Context, userID, cardID int, kind models.ListKind) error {
	args := m.Called(ctx, userID, cardID, kind)
	return args.Error(0)
}

func (m *ListServiceMock) Entries(ctx context.Context, userID int) ([]models.TradeListEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.TradeListEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.TradeListEntry)
	}
	return entries, args.Error(1)
}

func (m *ListServiceMock) UpdateLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error) {
	args := m.Called(ctx, userID, lat, lng)
	var loc models.Location
	if val := args.Get(0); val != nil {
		loc = val.(models.Location)
	}
	return loc, args.Error(1)
}

type MatchFinderMock struct {
	mock.Mock
}

func (m *MatchFinderMock) FindMatches(ctx context.Context, requesterID int, radiusKm float64) ([]models.MatchCandidate, error) {
	args := m.Called(ctx, requesterID, radiusKm)
	var candidates []models.MatchCandidate
	if val := args.Get(0); val != nil {
		candidates = val.([]models.MatchCandidate)
	}
	return candidates, args.Error(1)
}

func (m *MatchFinderMock) EffectiveRadiusKm(radiusKm float64) float64 {
	args := m.Called(radiusKm)
	return args.Get(0).(float64)
}

type CardLookupMock struct {
	mock.Mock
}

func (m *CardLookupMock) Lookup(ctx context.Context, ids []int) (map[int]models.CardInfo, error) {
	args := m.Called(ctx, ids)
	var cards map[int]models.CardInfo
	if val := args.Get(0); val != nil {
		cards = val.(map[int]models.CardInfo)
	}
	return cards, args.Error(1)
}

type SessionServiceMock struct {
	mock.Mock
}

func (m *SessionServiceMock) GetOrCreate(ctx context.Context, userID, partnerID int) (models.TradeMatch, error) {
	args := m.Called(ctx, userID, partnerID)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

func (m *SessionServiceMock) Get(ctx context.Context, sessionID, requesterID int) (models.TradeMatch, error) {
	args := m.Called(ctx, sessionID, requesterID)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

func (m *SessionServiceMock) List(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error) {
	args := m.Called(ctx, userID, status)
	var matches []models.TradeMatch
	if val := args.Get(0); val != nil {
		matches = val.([]models.TradeMatch)
	}
	return matches, args.Error(1)
}

func (m *SessionServiceMock) Cancel(ctx context.Context, sessionID, actorID int) (models.TradeMatch, error) {
	args := m.Called(ctx, sessionID, actorID)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

func (m *SessionServiceMock) Complete(ctx context.Context, sessionID, actorID, points int) (models.TradeMatch, error) {
	args := m.Called(ctx, sessionID, actorID, points)
	var match models.TradeMatch
	if val := args.Get(0); val != nil {
		match = val.(models.TradeMatch)
	}
	return match, args.Error(1)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) Append(ctx context.Context, sessionID, senderID int, body string) (models.TradeMessage, error) {
	args := m.Called(ctx, sessionID, senderID, body)
	var msg models.TradeMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.TradeMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageServiceMock) ListFor(ctx context.Context, sessionID, requesterID int) ([]models.TradeMessage, models.MatchStatus, error) {
	args := m.Called(ctx, sessionID, requesterID)
	var msgs []models.TradeMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.TradeMessage)
	}
	var status models.MatchStatus
	if val := args.Get(1); val != nil {
		status = val.(models.MatchStatus)
	}
	return msgs, status, args.Error(2)
}
