package models

import "time"

// Location is a user's last reported position.
type Location struct {
	UserID    int       `db:"user_id" json:"user_id"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Known is false for the 0,0 placeholder that clients send before a fix.
func (l Location) Known() bool {
	return l.Latitude != 0 || l.Longitude != 0
}
