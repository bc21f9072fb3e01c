package trading

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-service/internal/models"
)

func TestListsAddAndRemove(t *testing.T) {
	store := newMemStore()
	lists := NewLists(store, store)
	ctx := context.Background()

	first, err := lists.AddEntry(ctx, 1, 100, models.ListWant)
	require.NoError(t, err)
	again, err := lists.AddEntry(ctx, 1, 100, models.ListWant)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	_, err = lists.AddEntry(ctx, 1, 100, models.ListHave)
	require.NoError(t, err)

	entries, err := lists.Entries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, lists.RemoveEntry(ctx, 1, 100, models.ListWant))
	err = lists.RemoveEntry(ctx, 1, 100, models.ListWant)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListsValidation(t *testing.T) {
	store := newMemStore()
	lists := NewLists(store, store)
	ctx := context.Background()

	_, err := lists.AddEntry(ctx, 1, 0, models.ListWant)
	require.ErrorIs(t, err, ErrValidation)
	_, err = lists.AddEntry(ctx, 1, 5, models.ListKind("LEND"))
	require.ErrorIs(t, err, ErrValidation)
	err = lists.RemoveEntry(ctx, 1, 5, models.ListKind("LEND"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateLocation(t *testing.T) {
	store := newMemStore()
	lists := NewLists(store, store)
	ctx := context.Background()

	loc, err := lists.UpdateLocation(ctx, 1, parisLat, parisLng)
	require.NoError(t, err)
	assert.True(t, loc.Known())

	for _, bad := range [][2]float64{{91, 0}, {0, -181}, {math.NaN(), 2}} {
		_, err := lists.UpdateLocation(ctx, 1, bad[0], bad[1])
		require.ErrorIs(t, err, ErrValidation)
	}
}
