package trading

import (
	"context"
	"sort"
	"sync"
	"time"

	"trade-service/internal/geo"
	"trade-service/internal/models"
	"trade-service/internal/repositories"
)

// memStore is an in-memory stand-in for the four Postgres repositories.
type memStore struct {
	mu        sync.Mutex
	entries   []models.TradeListEntry
	locations map[int]models.Location
	matches   map[int]*models.TradeMatch
	messages  []models.TradeMessage
	nextID    int
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		locations: map[int]models.Location{},
		matches:   map[int]*models.TradeMatch{},
		clock:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *memStore) want(userID int, cards ...int) {
	for _, c := range cards {
		_, _ = s.AddEntry(context.Background(), userID, c, models.ListWant)
	}
}

func (s *memStore) have(userID int, cards ...int) {
	for _, c := range cards {
		_, _ = s.AddEntry(context.Background(), userID, c, models.ListHave)
	}
}

func (s *memStore) at(userID int, lat, lng float64) {
	_, _ = s.UpsertLocation(context.Background(), userID, lat, lng)
}

func (s *memStore) AddEntry(_ context.Context, userID int, cardID int, kind models.ListKind) (models.TradeListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.UserID == userID && e.CardID == cardID && e.Kind == kind {
			return e, nil
		}
	}
	e := models.TradeListEntry{ID: s.id(), UserID: userID, CardID: cardID, Kind: kind, CreatedAt: s.tick()}
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *memStore) RemoveEntry(_ context.Context, userID int, cardID int, kind models.ListKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.UserID == userID && e.CardID == cardID && e.Kind == kind {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return repositories.ErrEntryNotFound
}

func (s *memStore) ListEntries(ctx context.Context, userID int) ([]models.TradeListEntry, error) {
	return s.ListEntriesForUsers(ctx, []int{userID})
}

func (s *memStore) ListEntriesForUsers(_ context.Context, userIDs []int) ([]models.TradeListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[int]bool{}
	for _, id := range userIDs {
		wanted[id] = true
	}
	out := []models.TradeListEntry{}
	for _, e := range s.entries {
		if wanted[e.UserID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) GetLocation(_ context.Context, userID int) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[userID]
	if !ok {
		return models.Location{}, repositories.ErrLocationNotFound
	}
	return loc, nil
}

func (s *memStore) UpsertLocation(_ context.Context, userID int, lat, lng float64) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := models.Location{UserID: userID, Latitude: lat, Longitude: lng, UpdatedAt: s.tick()}
	s.locations[userID] = loc
	return loc, nil
}

func (s *memStore) ListTradersWithin(_ context.Context, userID int, box geo.BoundingBox) ([]models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hasList := map[int]bool{}
	for _, e := range s.entries {
		hasList[e.UserID] = true
	}
	out := []models.Location{}
	for id, loc := range s.locations {
		if id == userID || !hasList[id] {
			continue
		}
		if box.Contains(geo.Point{Lat: loc.Latitude, Lng: loc.Longitude}) {
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *memStore) GetOrCreateActive(_ context.Context, userID int, partnerID int) (models.TradeMatch, bool, error) {
	if userID == partnerID {
		return models.TradeMatch{}, false, repositories.ErrSelfMatch
	}
	u1, u2 := models.CanonicalPair(userID, partnerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.User1ID == u1 && m.User2ID == u2 && m.Status == models.StatusActive {
			return *m, false, nil
		}
	}
	now := s.tick()
	m := &models.TradeMatch{ID: s.id(), User1ID: u1, User2ID: u2, Status: models.StatusActive, CreatedAt: now, LastActivityAt: now}
	s.matches[m.ID] = m
	return *m, true, nil
}

func (s *memStore) GetMatch(_ context.Context, matchID int) (models.TradeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return models.TradeMatch{}, repositories.ErrMatchNotFound
	}
	return *m, nil
}

func (s *memStore) ListMatchesForUser(_ context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TradeMatch{}
	for _, m := range s.matches {
		if m.HasParticipant(userID) && (status == "" || m.Status == status) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (s *memStore) LatestMatchesWith(_ context.Context, userID int, partnerIDs []int) ([]models.TradeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := map[int]models.TradeMatch{}
	for _, partner := range partnerIDs {
		u1, u2 := models.CanonicalPair(userID, partner)
		for _, m := range s.matches {
			if m.User1ID != u1 || m.User2ID != u2 {
				continue
			}
			cur, ok := best[partner]
			switch {
			case !ok:
				best[partner] = *m
			case m.Status == models.StatusActive && cur.Status != models.StatusActive:
				best[partner] = *m
			case (m.Status == models.StatusActive) == (cur.Status == models.StatusActive) && m.CreatedAt.After(cur.CreatedAt):
				best[partner] = *m
			}
		}
	}
	out := make([]models.TradeMatch, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) CloseMatch(_ context.Context, matchID int, status models.MatchStatus, agreement bool, points *int) (models.TradeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return models.TradeMatch{}, repositories.ErrMatchNotFound
	}
	if m.Status != models.StatusActive {
		return models.TradeMatch{}, repositories.ErrMatchNotActive
	}
	now := s.tick()
	m.Status = status
	m.AgreementReached = &agreement
	m.PointsAwarded = points
	m.ClosedAt = &now
	m.LastActivityAt = now
	return *m, nil
}

func (s *memStore) MarkAwardsSettled(_ context.Context, matchID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok || m.Status != models.StatusCompleted {
		return repositories.ErrMatchNotFound
	}
	m.AwardsSettled = true
	return nil
}

func (s *memStore) AppendMessage(_ context.Context, sessionID int, senderID int, body string) (models.TradeMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[sessionID]
	if !ok || m.Status != models.StatusActive || !m.HasParticipant(senderID) {
		return models.TradeMessage{}, repositories.ErrSessionClosed
	}
	now := s.tick()
	m.LastActivityAt = now
	msg := models.TradeMessage{ID: s.id(), SessionID: sessionID, SenderID: senderID, Body: body, SentAt: now}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *memStore) ListMessages(_ context.Context, sessionID int) ([]models.TradeMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TradeMessage{}
	for _, msg := range s.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type notification struct {
	sessionID int
	kind      string
	status    models.MatchStatus
	body      string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) BroadcastMessage(sessionID int, msg models.TradeMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{sessionID: sessionID, kind: "message", body: msg.Body})
}

func (n *recordingNotifier) BroadcastStatus(sessionID int, status models.MatchStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{sessionID: sessionID, kind: "status", status: status})
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []string
}

func (a *recordingAuditor) EmitSessionEvent(_ context.Context, event string, _ models.TradeMatch, _ int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

var (
	_ repositories.TradeListRepository    = (*memStore)(nil)
	_ repositories.LocationRepository     = (*memStore)(nil)
	_ repositories.MatchRepository        = (*memStore)(nil)
	_ repositories.TradeMessageRepository = (*memStore)(nil)
	_ Notifier                            = (*recordingNotifier)(nil)
	_ Auditor                             = (*recordingAuditor)(nil)
)
