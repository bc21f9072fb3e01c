package catalog

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"trade-service/internal/models"
)

// Fetcher loads card metadata from the catalog service.
type Fetcher interface {
	BulkCards(ctx context.Context, ids []int) ([]models.CardInfo, error)
}

// Service serves card metadata from an in-process LRU, fetching misses in one batch.
type Service struct {
	fetcher Fetcher
	cache   *lru.Cache
}

// NewService builds a cached catalog lookup holding up to size cards.
func NewService(fetcher Fetcher, size int) (*Service, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create card cache: %w", err)
	}
	return &Service{fetcher: fetcher, cache: cache}, nil
}

// Lookup returns metadata for the requested ids. Unknown ids are absent from the result.
func (s *Service) Lookup(ctx context.Context, ids []int) (map[int]models.CardInfo, error) {
	out := make(map[int]models.CardInfo, len(ids))
	var missing []int
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if v, ok := s.cache.Get(id); ok {
			out[id] = v.(models.CardInfo)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	cards, err := s.fetcher.BulkCards(ctx, missing)
	if err != nil {
		return out, err
	}
	for _, card := range cards {
		s.cache.Add(card.ID, card)
		out[card.ID] = card
	}
	return out, nil
}
