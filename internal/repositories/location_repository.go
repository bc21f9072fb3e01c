package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"trade-service/internal/geo"
	"trade-service/internal/models"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationRepository stores last-known user coordinates.
type LocationRepository interface {
	GetLocation(ctx context.Context, userID int) (models.Location, error)
	UpsertLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error)
	ListTradersWithin(ctx context.Context, userID int, box geo.BoundingBox) ([]models.Location, error)
}

// LocationRepo is a sqlx implementation of LocationRepository.
type LocationRepo struct {
	db *sqlx.DB
}

// NewLocationRepo constructs a LocationRepo.
func NewLocationRepo(db *sqlx.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// GetLocation fetches the last reported position of a user.
func (r *LocationRepo) GetLocation(ctx context.Context, userID int) (models.Location, error) {
	var loc models.Location
	err := r.db.GetContext(ctx, &loc, `SELECT user_id, latitude, longitude, updated_at FROM user_locations WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, ErrLocationNotFound
	}
	return loc, err
}

// UpsertLocation records a new position for the user.
func (r *LocationRepo) UpsertLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error) {
	var loc models.Location
	err := r.db.GetContext(ctx, &loc, `INSERT INTO user_locations (user_id, latitude, longitude) VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = NOW()
        RETURNING user_id, latitude, longitude, updated_at`, userID, lat, lng)
	return loc, err
}

// ListTradersWithin returns positions inside box of users, other than userID,
// that have at least one trade list entry. Exact distance filtering is left to the caller.
func (r *LocationRepo) ListTradersWithin(ctx context.Context, userID int, box geo.BoundingBox) ([]models.Location, error) {
	locs := []models.Location{}
	query := `SELECT l.user_id, l.latitude, l.longitude, l.updated_at FROM user_locations l
        WHERE l.user_id <> $1
        AND l.latitude BETWEEN $2 AND $3
        AND l.longitude BETWEEN $4 AND $5
        AND EXISTS (SELECT 1 FROM trade_list_entries e WHERE e.user_id = l.user_id)`
	err := r.db.SelectContext(ctx, &locs, query, userID, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	return locs, err
}
