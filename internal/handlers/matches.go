package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-service/internal/models"
)

type matchFinder interface {
	FindMatches(ctx context.Context, requesterID int, radiusKm float64) ([]models.MatchCandidate, error)
	EffectiveRadiusKm(radiusKm float64) float64
}

type cardLookup interface {
	Lookup(ctx context.Context, ids []int) (map[int]models.CardInfo, error)
}

// MatchHandler serves proximity trade candidates.
type MatchHandler struct {
	finder          matchFinder
	cards           cardLookup
	defaultRadiusKm float64
	logger          *zap.Logger
}

// NewMatchHandler builds a MatchHandler. cards may be nil, in which case
// candidates carry card ids only.
func NewMatchHandler(finder matchFinder, cards cardLookup, defaultRadiusKm float64, logger *zap.Logger) *MatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchHandler{finder: finder, cards: cards, defaultRadiusKm: defaultRadiusKm, logger: logger}
}

type candidateResponse struct {
	models.MatchCandidate
	Cards map[string]models.CardInfo `json:"cards,omitempty"`
}

// FindMatches returns nearby users whose lists complement the caller's.
func (h *MatchHandler) FindMatches(c *gin.Context) {
	radius := h.defaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius_km"})
			return
		}
		radius = parsed
	}

	userID := c.GetInt("userID")
	candidates, err := h.finder.FindMatches(c.Request.Context(), userID, radius)
	if err != nil {
		writeError(c, err, "failed to find matches")
		return
	}

	cards := h.lookupCards(c.Request.Context(), candidates)
	resp := make([]candidateResponse, 0, len(candidates))
	for _, cand := range candidates {
		item := candidateResponse{MatchCandidate: cand}
		if len(cards) > 0 {
			item.Cards = make(map[string]models.CardInfo)
			for _, id := range cand.CardIDs() {
				if info, ok := cards[id]; ok {
					item.Cards[strconv.Itoa(id)] = info
				}
			}
		}
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, gin.H{"radius_km": h.finder.EffectiveRadiusKm(radius), "matches": resp})
}

func (h *MatchHandler) lookupCards(ctx context.Context, candidates []models.MatchCandidate) map[int]models.CardInfo {
	if h.cards == nil || len(candidates) == 0 {
		return nil
	}
	var ids []int
	for _, cand := range candidates {
		ids = append(ids, cand.CardIDs()...)
	}
	cards, err := h.cards.Lookup(ctx, ids)
	if err != nil {
		h.logger.Warn("card catalog lookup failed", zap.Int("cards", len(ids)), zap.Error(err))
	}
	return cards
}
