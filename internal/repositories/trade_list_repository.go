package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"trade-service/internal/models"
)

var ErrEntryNotFound = errors.New("trade list entry not found")

// TradeListRepository abstracts WANT/HAVE list persistence.
type TradeListRepository interface {
	AddEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) (models.TradeListEntry, error)
	RemoveEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) error
	ListEntries(ctx context.Context, userID int) ([]models.TradeListEntry, error)
	ListEntriesForUsers(ctx context.Context, userIDs []int) ([]models.TradeListEntry, error)
}

// TradeListRepo is a sqlx implementation of TradeListRepository.
type TradeListRepo struct {
	db *sqlx.DB
}

// NewTradeListRepo constructs a TradeListRepo.
func NewTradeListRepo(db *sqlx.DB) *TradeListRepo {
	return &TradeListRepo{db: db}
}

// AddEntry inserts the entry, or returns the existing one for the same (user, card, kind).
func (r *TradeListRepo) AddEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) (models.TradeListEntry, error) {
	var entry models.TradeListEntry
	err := r.db.GetContext(ctx, &entry, `INSERT INTO trade_list_entries (user_id, card_id, kind) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, card_id, kind) DO NOTHING
        RETURNING id, user_id, card_id, kind, created_at`, userID, cardID, kind)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.TradeListEntry{}, err
	}
	err = r.db.GetContext(ctx, &entry, `SELECT id, user_id, card_id, kind, created_at FROM trade_list_entries
        WHERE user_id=$1 AND card_id=$2 AND kind=$3`, userID, cardID, kind)
	return entry, err
}

// RemoveEntry deletes one entry from a user's list.
func (r *TradeListRepo) RemoveEntry(ctx context.Context, userID int, cardID int, kind models.ListKind) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trade_list_entries WHERE user_id=$1 AND card_id=$2 AND kind=$3`, userID, cardID, kind)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListEntries returns both lists of a user.
func (r *TradeListRepo) ListEntries(ctx context.Context, userID int) ([]models.TradeListEntry, error) {
	entries := []models.TradeListEntry{}
	err := r.db.SelectContext(ctx, &entries, `SELECT id, user_id, card_id, kind, created_at FROM trade_list_entries
        WHERE user_id=$1 ORDER BY kind, card_id`, userID)
	return entries, err
}

// ListEntriesForUsers loads the lists of several users in one query.
func (r *TradeListRepo) ListEntriesForUsers(ctx context.Context, userIDs []int) ([]models.TradeListEntry, error) {
	entries := []models.TradeListEntry{}
	if len(userIDs) == 0 {
		return entries, nil
	}
	err := r.db.SelectContext(ctx, &entries, `SELECT id, user_id, card_id, kind, created_at FROM trade_list_entries
        WHERE user_id = ANY($1)`, pq.Array(userIDs))
	return entries, err
}
