package models

import (
	"sort"
	"strings"
	"time"
)

// ListKind tells whether a card sits on a user's WANT or HAVE list.
type ListKind string

const (
	ListWant ListKind = "WANT"
	ListHave ListKind = "HAVE"
)

// Valid reports whether k is one of the known list kinds.
func (k ListKind) Valid() bool {
	return k == ListWant || k == ListHave
}

// ParseListKind accepts "want"/"have" in any case.
func ParseListKind(raw string) (ListKind, bool) {
	kind := ListKind(strings.ToUpper(strings.TrimSpace(raw)))
	return kind, kind.Valid()
}

// TradeListEntry is one card on one of a user's trade lists.
type TradeListEntry struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	CardID    int       `db:"card_id" json:"card_id"`
	Kind      ListKind  `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CardSet is a set of card template ids.
type CardSet map[int]struct{}

// SplitLists groups entries into want and have sets.
func SplitLists(entries []TradeListEntry) (want CardSet, have CardSet) {
	want, have = CardSet{}, CardSet{}
	for _, e := range entries {
		switch e.Kind {
		case ListWant:
			want[e.CardID] = struct{}{}
		case ListHave:
			have[e.CardID] = struct{}{}
		}
	}
	return want, have
}

// Intersect returns the ids present in both sets, ascending.
func (s CardSet) Intersect(other CardSet) []int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make([]int, 0)
	for id := range small {
		if _, ok := large[id]; ok {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
