package trading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trade-service/internal/geo"
	"trade-service/internal/models"
	"trade-service/internal/observability"
	"trade-service/internal/repositories"
)

// FinderOptions bounds a single scan.
type FinderOptions struct {
	MaxRadiusKm float64
	Limit       int
}

// Finder computes proximity trade candidates. Nothing it returns is persisted.
type Finder struct {
	lists     repositories.TradeListRepository
	locations repositories.LocationRepository
	matches   repositories.MatchRepository
	opts      FinderOptions
	logger    *zap.Logger
}

// NewFinder builds a Finder.
func NewFinder(lists repositories.TradeListRepository, locations repositories.LocationRepository, matches repositories.MatchRepository, opts FinderOptions, logger *zap.Logger) *Finder {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{lists: lists, locations: locations, matches: matches, opts: opts, logger: logger}
}

// EffectiveRadiusKm returns the radius a scan actually uses for the requested one.
func (f *Finder) EffectiveRadiusKm(radiusKm float64) float64 {
	if f.opts.MaxRadiusKm > 0 && radiusKm > f.opts.MaxRadiusKm {
		return f.opts.MaxRadiusKm
	}
	return radiusKm
}

// FindMatches returns users within radiusKm whose lists complement the
// requester's, nearest first. An empty result is not an error.
func (f *Finder) FindMatches(ctx context.Context, requesterID int, radiusKm float64) ([]models.MatchCandidate, error) {
	if math.IsNaN(radiusKm) || radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrValidation)
	}
	radiusKm = f.EffectiveRadiusKm(radiusKm)

	ctx, span := otel.Tracer("trade-service/trading").Start(ctx, "trading.find_matches")
	defer span.End()
	span.SetAttributes(attribute.Int("requester_id", requesterID), attribute.Float64("radius_km", radiusKm))

	own, err := f.lists.ListEntries(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load trade lists: %w", err)
	}
	want, have := models.SplitLists(own)
	if len(want) == 0 && len(have) == 0 {
		return []models.MatchCandidate{}, nil
	}

	origin, err := f.locations.GetLocation(ctx, requesterID)
	if errors.Is(err, repositories.ErrLocationNotFound) || (err == nil && !origin.Known()) {
		return nil, ErrLocationRequired
	}
	if err != nil {
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	center := geo.Point{Lat: origin.Latitude, Lng: origin.Longitude}
	nearby, err := f.locations.ListTradersWithin(ctx, requesterID, geo.BoxAround(center, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("list nearby traders: %w", err)
	}

	distances := make(map[int]float64, len(nearby))
	ids := make([]int, 0, len(nearby))
	for _, loc := range nearby {
		if loc.UserID == requesterID || !loc.Known() {
			continue
		}
		d := geo.DistanceKm(center, geo.Point{Lat: loc.Latitude, Lng: loc.Longitude})
		if d > radiusKm {
			continue
		}
		if _, seen := distances[loc.UserID]; !seen {
			ids = append(ids, loc.UserID)
		}
		distances[loc.UserID] = d
	}
	if len(ids) == 0 {
		observability.ObserveMatchesReturned(0)
		return []models.MatchCandidate{}, nil
	}

	entries, err := f.lists.ListEntriesForUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidate lists: %w", err)
	}
	byUser := make(map[int][]models.TradeListEntry, len(ids))
	for _, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	candidates := make([]models.MatchCandidate, 0)
	for _, id := range ids {
		theirWant, theirHave := models.SplitLists(byUser[id])
		theyHave := theirHave.Intersect(want)
		iHave := have.Intersect(theirWant)
		kind, ok := models.ClassifyMatch(theyHave, iHave)
		if !ok {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			UserID:     id,
			DistanceKm: distances[id],
			TheyHave:   theyHave,
			IHave:      iHave,
			Kind:       kind,
		})
	}

	rankCandidates(candidates)
	if len(candidates) > f.opts.Limit {
		candidates = candidates[:f.opts.Limit]
	}

	if err := f.attachSessions(ctx, requesterID, candidates); err != nil {
		// status badges are cosmetic; a failed lookup still returns the matches
		f.logger.Warn("attach session status failed", zap.Int("requester_id", requesterID), zap.Error(err))
	}

	observability.ObserveMatchesReturned(len(candidates))
	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates, nil
}

func (f *Finder) attachSessions(ctx context.Context, requesterID int, candidates []models.MatchCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	partnerIDs := make([]int, 0, len(candidates))
	for _, c := range candidates {
		partnerIDs = append(partnerIDs, c.UserID)
	}
	sessions, err := f.matches.LatestMatchesWith(ctx, requesterID, partnerIDs)
	if err != nil {
		return err
	}
	byPartner := make(map[int]models.TradeMatch, len(sessions))
	for _, s := range sessions {
		byPartner[s.Partner(requesterID)] = s
	}
	for i := range candidates {
		s, ok := byPartner[candidates[i].UserID]
		if !ok {
			continue
		}
		id, status := s.ID, s.Status
		candidates[i].SessionID = &id
		candidates[i].SessionStatus = &status
	}
	return nil
}

// rankCandidates orders by distance, then larger overlap, then user id so the
// output is deterministic.
func rankCandidates(candidates []models.MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Overlap() != b.Overlap() {
			return a.Overlap() > b.Overlap()
		}
		return a.UserID < b.UserID
	})
}
