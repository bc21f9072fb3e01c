package trading

import (
	"context"
	"errors"
	"fmt"
	"math"

	"trade-service/internal/models"
	"trade-service/internal/repositories"
)

// Lists manages a user's WANT/HAVE entries and last-known location.
type Lists struct {
	lists     repositories.TradeListRepository
	locations repositories.LocationRepository
}

// NewLists builds a Lists service.
func NewLists(lists repositories.TradeListRepository, locations repositories.LocationRepository) *Lists {
	return &Lists{lists: lists, locations: locations}
}

// AddEntry puts a card on one of the user's lists. Adding twice is a no-op.
func (l *Lists) AddEntry(ctx context.Context, userID, cardID int, kind models.ListKind) (models.TradeListEntry, error) {
	if cardID <= 0 {
		return models.TradeListEntry{}, fmt.Errorf("%w: invalid card id", ErrValidation)
	}
	if !kind.Valid() {
		return models.TradeListEntry{}, fmt.Errorf("%w: unknown list kind %q", ErrValidation, kind)
	}
	entry, err := l.lists.AddEntry(ctx, userID, cardID, kind)
	if err != nil {
		return models.TradeListEntry{}, fmt.Errorf("add entry: %w", err)
	}
	return entry, nil
}

// RemoveEntry takes a card off one of the user's lists.
func (l *Lists) RemoveEntry(ctx context.Context, userID, cardID int, kind models.ListKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown list kind %q", ErrValidation, kind)
	}
	err := l.lists.RemoveEntry(ctx, userID, cardID, kind)
	if errors.Is(err, repositories.ErrEntryNotFound) {
		return fmt.Errorf("card %d on %s list: %w", cardID, kind, ErrNotFound)
	}
	return err
}

// Entries returns both of the user's lists.
func (l *Lists) Entries(ctx context.Context, userID int) ([]models.TradeListEntry, error) {
	return l.lists.ListEntries(ctx, userID)
}

// UpdateLocation records the user's current coordinates.
func (l *Lists) UpdateLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.Location{}, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	loc, err := l.locations.UpsertLocation(ctx, userID, lat, lng)
	if err != nil {
		return models.Location{}, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}
