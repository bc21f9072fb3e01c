package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS trade_list_entries (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            card_id INT NOT NULL,
            kind TEXT NOT NULL CHECK (kind IN ('WANT', 'HAVE')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user_id, card_id, kind)
        );`,
		`CREATE INDEX IF NOT EXISTS trade_list_entries_card_idx ON trade_list_entries (card_id, kind);`,
		`CREATE TABLE IF NOT EXISTS user_locations (
            user_id INT PRIMARY KEY,
            latitude DOUBLE PRECISION NOT NULL,
            longitude DOUBLE PRECISION NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS user_locations_lat_lng_idx ON user_locations (latitude, longitude);`,
		`CREATE TABLE IF NOT EXISTS trade_matches (
            id SERIAL PRIMARY KEY,
            user1_id INT NOT NULL,
            user2_id INT NOT NULL,
            status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'COMPLETED', 'CANCELLED')),
            agreement_reached BOOLEAN,
            points_awarded INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            closed_at TIMESTAMPTZ,
            awards_settled BOOLEAN NOT NULL DEFAULT FALSE,
            CHECK (user1_id < user2_id)
        );`,
		`ALTER TABLE trade_matches ADD COLUMN IF NOT EXISTS awards_settled BOOLEAN NOT NULL DEFAULT FALSE;`,
		// one ACTIVE session per pair; terminal rows are history and may repeat
		`CREATE UNIQUE INDEX IF NOT EXISTS trade_matches_active_pair_idx
            ON trade_matches (user1_id, user2_id) WHERE status = 'ACTIVE';`,
		`CREATE INDEX IF NOT EXISTS trade_matches_user2_idx ON trade_matches (user2_id);`,
		`CREATE TABLE IF NOT EXISTS trade_messages (
            id SERIAL PRIMARY KEY,
            session_id INT NOT NULL REFERENCES trade_matches(id),
            sender_id INT NOT NULL,
            body TEXT NOT NULL,
            sent_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
        );`,
		`CREATE INDEX IF NOT EXISTS trade_messages_session_idx ON trade_messages (session_id, sent_at, id);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
