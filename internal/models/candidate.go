package models

// MatchKind labels which direction a candidate's lists complement the requester's.
type MatchKind string

const (
	MatchBoth     MatchKind = "BOTH"
	MatchTheyHave MatchKind = "THEY_HAVE_WHAT_I_WANT"
	MatchIHave    MatchKind = "I_HAVE_WHAT_THEY_WANT"
)

// ClassifyMatch returns the kind for the two intersections, or false when both are empty.
func ClassifyMatch(theyHave, iHave []int) (MatchKind, bool) {
	switch {
	case len(theyHave) > 0 && len(iHave) > 0:
		return MatchBoth, true
	case len(theyHave) > 0:
		return MatchTheyHave, true
	case len(iHave) > 0:
		return MatchIHave, true
	}
	return "", false
}

// MatchCandidate is a computed, non-persisted trade suggestion.
type MatchCandidate struct {
	UserID        int          `json:"user_id"`
	DistanceKm    float64      `json:"distance_km"`
	TheyHave      []int        `json:"they_have_what_i_want"`
	IHave         []int        `json:"i_have_what_they_want"`
	Kind          MatchKind    `json:"kind"`
	SessionID     *int         `json:"session_id,omitempty"`
	SessionStatus *MatchStatus `json:"session_status,omitempty"`
}

// Overlap is the total number of cards that make the match.
func (c MatchCandidate) Overlap() int {
	return len(c.TheyHave) + len(c.IHave)
}

// CardIDs returns every card id referenced by the candidate.
func (c MatchCandidate) CardIDs() []int {
	ids := make([]int, 0, c.Overlap())
	ids = append(ids, c.TheyHave...)
	return append(ids, c.IHave...)
}

// CardInfo is display metadata resolved from the card catalog.
type CardInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Rarity   string `json:"rarity,omitempty"`
}
