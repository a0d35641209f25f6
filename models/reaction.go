package models

import (
	"strings"
	"time"
)

// ReactionKind is one of the fixed reaction types a user can leave on a post.
type ReactionKind string

const (
	ReactionLike        ReactionKind = "like"
	ReactionLove        ReactionKind = "love"
	ReactionBravo       ReactionKind = "bravo"
	ReactionInteresting ReactionKind = "interesting"
	ReactionWelcome     ReactionKind = "welcome"
)

// ReactionKinds lists the accepted kinds.
var ReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionBravo,
	ReactionInteresting,
	ReactionWelcome,
}

// ParseReactionKind validates raw input.
func ParseReactionKind(raw string) (ReactionKind, bool) {
	k := ReactionKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ReactionKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// ReactionEntry records who reacted and when.
type ReactionEntry struct {
	UserID      uint      `json:"user_id"`
	DisplayName string    `json:"display_name"`
	ReactedAt   time.Time `json:"reacted_at"`
}

// ReactionBucket holds the users for one kind. Count always equals len(Users).
type ReactionBucket struct {
	Count int             `json:"count"`
	Users []ReactionEntry `json:"users"`
}

// ReactionSet is the per-post reaction tally, keyed by kind.
type ReactionSet map[ReactionKind]ReactionBucket

// NewReactionSet returns an empty tally with every kind present.
func NewReactionSet() ReactionSet {
	s := make(ReactionSet, len(ReactionKinds))
	for _, k := range ReactionKinds {
		s[k] = ReactionBucket{Users: []ReactionEntry{}}
	}
	return s
}

// Normalize returns a copy holding every kind, unknown kinds dropped and counts recomputed.
func (s ReactionSet) Normalize() ReactionSet {
	out := NewReactionSet()
	for _, k := range ReactionKinds {
		b, ok := s[k]
		if !ok {
			continue
		}
		users := make([]ReactionEntry, len(b.Users))
		copy(users, b.Users)
		out[k] = ReactionBucket{Count: len(users), Users: users}
	}
	return out
}

// KindOf returns the kind the user currently reacted with, if any.
func (s ReactionSet) KindOf(userID uint) (ReactionKind, bool) {
	for _, k := range ReactionKinds {
		for _, e := range s[k].Users {
			if e.UserID == userID {
				return k, true
			}
		}
	}
	return "", false
}

// Toggle applies a reaction click and returns the new tally plus the user's resulting kind.
// Clicking the current kind removes it; clicking another kind moves the user there.
// The receiver is not modified.
func (s ReactionSet) Toggle(userID uint, displayName string, kind ReactionKind, at time.Time) (ReactionSet, *ReactionKind) {
	out := s.Normalize()
	current, had := out.KindOf(userID)
	if had {
		out[current] = out[current].without(userID)
		if current == kind {
			return out, nil
		}
	}
	b := out[kind]
	b.Users = append(b.Users, ReactionEntry{UserID: userID, DisplayName: displayName, ReactedAt: at})
	b.Count = len(b.Users)
	out[kind] = b
	result := kind
	return out, &result
}

// Total sums the counts across kinds.
func (s ReactionSet) Total() int {
	total := 0
	for _, k := range ReactionKinds {
		total += len(s[k].Users)
	}
	return total
}

// Counts returns the count per kind, every kind present.
func (s ReactionSet) Counts() map[ReactionKind]int {
	out := make(map[ReactionKind]int, len(ReactionKinds))
	for _, k := range ReactionKinds {
		out[k] = len(s[k].Users)
	}
	return out
}

func (b ReactionBucket) without(userID uint) ReactionBucket {
	users := make([]ReactionEntry, 0, len(b.Users))
	for _, e := range b.Users {
		if e.UserID != userID {
			users = append(users, e)
		}
	}
	return ReactionBucket{Count: len(users), Users: users}
}
