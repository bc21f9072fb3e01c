package models

import "time"

// MatchStatus is the lifecycle state of a trade session.
type MatchStatus string

const (
	StatusActive    MatchStatus = "ACTIVE"
	StatusCompleted MatchStatus = "COMPLETED"
	StatusCancelled MatchStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s MatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseMatchStatus validates a status filter value.
func ParseMatchStatus(raw string) (MatchStatus, bool) {
	switch s := MatchStatus(raw); s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return s, true
	}
	return "", false
}

// TradeMatch is the durable session between two users. User1ID is always
// the smaller id of the pair.
type TradeMatch struct {
	ID               int         `db:"id" json:"id"`
	User1ID          int         `db:"user1_id" json:"user1_id"`
	User2ID          int         `db:"user2_id" json:"user2_id"`
	Status           MatchStatus `db:"status" json:"status"`
	AgreementReached *bool       `db:"agreement_reached" json:"agreement_reached,omitempty"`
	PointsAwarded    *int        `db:"points_awarded" json:"points_awarded,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	LastActivityAt   time.Time   `db:"last_activity_at" json:"last_activity_at"`
	ClosedAt         *time.Time  `db:"closed_at" json:"closed_at,omitempty"`
	// AwardsSettled is set once the ledger accepted both awards of a COMPLETED session.
	AwardsSettled bool `db:"awards_settled" json:"awards_settled"`
}

// HasParticipant reports whether userID is one of the two traders.
func (m TradeMatch) HasParticipant(userID int) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Partner returns the other participant.
func (m TradeMatch) Partner(userID int) int {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// CanonicalPair orders two user ids so the smaller comes first.
func CanonicalPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
