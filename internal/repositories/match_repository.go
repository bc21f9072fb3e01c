package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"trade-service/internal/models"
)

var (
	ErrMatchNotFound  = errors.New("trade match not found")
	ErrMatchNotActive = errors.New("trade match not active")
	ErrSelfMatch      = errors.New("cannot create trade match with self")
)

// getOrCreateAttempts bounds the retries when the active row for a pair is
// closed between our insert and re-read.
const getOrCreateAttempts = 3

const matchColumns = `id, user1_id, user2_id, status, agreement_reached, points_awarded, created_at, last_activity_at, closed_at, awards_settled`

// MatchRepository abstracts trade session persistence.
type MatchRepository interface {
	GetOrCreateActive(ctx context.Context, userID int, partnerID int) (models.TradeMatch, bool, error)
	GetMatch(ctx context.Context, matchID int) (models.TradeMatch, error)
	ListMatchesForUser(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error)
	LatestMatchesWith(ctx context.Context, userID int, partnerIDs []int) ([]models.TradeMatch, error)
	CloseMatch(ctx context.Context, matchID int, status models.MatchStatus, agreement bool, points *int) (models.TradeMatch, error)
	MarkAwardsSettled(ctx context.Context, matchID int) error
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// GetOrCreateActive returns the ACTIVE match for the pair, creating it when
// none exists. The partial unique index on (user1_id, user2_id) WHERE
// status='ACTIVE' makes concurrent callers converge on a single row. The bool
// reports whether this call created it.
func (r *MatchRepo) GetOrCreateActive(ctx context.Context, userID int, partnerID int) (models.TradeMatch, bool, error) {
	if userID == partnerID {
		return models.TradeMatch{}, false, ErrSelfMatch
	}
	user1, user2 := models.CanonicalPair(userID, partnerID)

	for attempt := 0; attempt < getOrCreateAttempts; attempt++ {
		match, err := r.activeForPair(ctx, user1, user2)
		if err == nil {
			return match, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.TradeMatch{}, false, err
		}

		err = r.db.GetContext(ctx, &match, `INSERT INTO trade_matches (user1_id, user2_id, status) VALUES ($1, $2, 'ACTIVE')
            ON CONFLICT (user1_id, user2_id) WHERE status = 'ACTIVE' DO NOTHING
            RETURNING `+matchColumns, user1, user2)
		if err == nil {
			return match, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.TradeMatch{}, false, err
		}
		// lost the insert race; the winner's row is visible on the next read
	}
	return models.TradeMatch{}, false, fmt.Errorf("get or create match %d-%d: gave up after %d attempts", user1, user2, getOrCreateAttempts)
}

func (r *MatchRepo) activeForPair(ctx context.Context, user1, user2 int) (models.TradeMatch, error) {
	var match models.TradeMatch
	err := r.db.GetContext(ctx, &match, `SELECT `+matchColumns+` FROM trade_matches
        WHERE user1_id=$1 AND user2_id=$2 AND status='ACTIVE'`, user1, user2)
	return match, err
}

// GetMatch fetches a match by id.
func (r *MatchRepo) GetMatch(ctx context.Context, matchID int) (models.TradeMatch, error) {
	var match models.TradeMatch
	err := r.db.GetContext(ctx, &match, `SELECT `+matchColumns+` FROM trade_matches WHERE id=$1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TradeMatch{}, ErrMatchNotFound
	}
	return match, err
}

// ListMatchesForUser returns the user's matches, most recently active first.
// An empty status returns every match.
func (r *MatchRepo) ListMatchesForUser(ctx context.Context, userID int, status models.MatchStatus) ([]models.TradeMatch, error) {
	matches := []models.TradeMatch{}
	query := `SELECT ` + matchColumns + ` FROM trade_matches
        WHERE (user1_id=$1 OR user2_id=$1) AND ($2 = '' OR status = $2)
        ORDER BY last_activity_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &matches, query, userID, string(status))
	return matches, err
}

// LatestMatchesWith returns, for each partner that has one, the most recent
// match between userID and that partner.
func (r *MatchRepo) LatestMatchesWith(ctx context.Context, userID int, partnerIDs []int) ([]models.TradeMatch, error) {
	matches := []models.TradeMatch{}
	if len(partnerIDs) == 0 {
		return matches, nil
	}
	query := `SELECT DISTINCT ON (user1_id, user2_id) ` + matchColumns + ` FROM trade_matches
        WHERE (user1_id=$1 AND user2_id = ANY($2)) OR (user2_id=$1 AND user1_id = ANY($2))
        ORDER BY user1_id, user2_id, (status = 'ACTIVE') DESC, created_at DESC`
	err := r.db.SelectContext(ctx, &matches, query, userID, pq.Array(partnerIDs))
	return matches, err
}

// CloseMatch moves an ACTIVE match to a terminal status. It returns
// ErrMatchNotActive when the match is missing or already terminal, so two
// concurrent closers cannot both succeed.
func (r *MatchRepo) CloseMatch(ctx context.Context, matchID int, status models.MatchStatus, agreement bool, points *int) (models.TradeMatch, error) {
	if !status.Terminal() {
		return models.TradeMatch{}, fmt.Errorf("close match %d: %s is not a terminal status", matchID, status)
	}
	var match models.TradeMatch
	err := r.db.GetContext(ctx, &match, `UPDATE trade_matches
        SET status=$2, agreement_reached=$3, points_awarded=$4, closed_at=NOW(), last_activity_at=NOW()
        WHERE id=$1 AND status='ACTIVE'
        RETURNING `+matchColumns, matchID, status, agreement, points)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TradeMatch{}, ErrMatchNotActive
	}
	return match, err
}

// MarkAwardsSettled records that both participants of a COMPLETED match were credited.
func (r *MatchRepo) MarkAwardsSettled(ctx context.Context, matchID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE trade_matches SET awards_settled=TRUE
        WHERE id=$1 AND status='COMPLETED'`, matchID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMatchNotFound
	}
	return nil
}
