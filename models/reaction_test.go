package models

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func checkInvariants(t *testing.T, s ReactionSet) {
	t.Helper()
	seen := map[uint]ReactionKind{}
	for _, k := range ReactionKinds {
		b, ok := s[k]
		if !ok {
			t.Fatalf("kind %s missing from set", k)
		}
		if b.Count != len(b.Users) {
			t.Fatalf("kind %s: count %d != %d users", k, b.Count, len(b.Users))
		}
		for _, e := range b.Users {
			if prev, dup := seen[e.UserID]; dup {
				t.Fatalf("user %d reacted with both %s and %s", e.UserID, prev, k)
			}
			seen[e.UserID] = k
		}
	}
}

func TestToggleRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	set := NewReactionSet()
	for i := 0; i < 500; i++ {
		user := uint(rng.Intn(8) + 1)
		kind := ReactionKinds[rng.Intn(len(ReactionKinds))]
		before, hadBefore := set.KindOf(user)

		next, result := set.Toggle(user, "user", kind, at)
		checkInvariants(t, next)

		switch {
		case hadBefore && before == kind:
			if result != nil {
				t.Fatalf("step %d: same kind must remove the reaction", i)
			}
			if next.Total() != set.Total()-1 {
				t.Fatalf("step %d: total should drop by one", i)
			}
		case hadBefore:
			if result == nil || *result != kind || next.Total() != set.Total() {
				t.Fatalf("step %d: switching kinds must keep the total", i)
			}
		default:
			if result == nil || *result != kind || next.Total() != set.Total()+1 {
				t.Fatalf("step %d: new reaction must add one", i)
			}
		}
		set = next
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	base := NewReactionSet()
	base, _ = base.Toggle(1, "Ada", ReactionLike, at)
	base, _ = base.Toggle(2, "Bob", ReactionBravo, at)

	for _, k := range ReactionKinds {
		once, _ := base.Toggle(3, "Carl", k, at)
		twice, result := once.Toggle(3, "Carl", k, at)
		if result != nil {
			t.Fatalf("kind %s: second toggle must clear the reaction", k)
		}
		if !reflect.DeepEqual(twice.Counts(), base.Counts()) {
			t.Fatalf("kind %s: counts %v != %v", k, twice.Counts(), base.Counts())
		}
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	at := time.Now()
	base := NewReactionSet()
	_, _ = base.Toggle(1, "Ada", ReactionLove, at)
	if base.Total() != 0 {
		t.Fatalf("receiver mutated: %+v", base)
	}
}

func TestNormalizeDropsUnknownKinds(t *testing.T) {
	raw := ReactionSet{
		"angry":      {Count: 3, Users: []ReactionEntry{{UserID: 9}}},
		ReactionLike: {Count: 7, Users: []ReactionEntry{{UserID: 1}, {UserID: 2}}},
	}
	n := raw.Normalize()
	checkInvariants(t, n)
	if _, ok := n["angry"]; ok {
		t.Fatal("unknown kind kept")
	}
	if n[ReactionLike].Count != 2 || n.Total() != 2 {
		t.Fatalf("unexpected normalized set %+v", n)
	}
}

func TestParseReactionKind(t *testing.T) {
	if k, ok := ParseReactionKind(" Bravo "); !ok || k != ReactionBravo {
		t.Fatalf("expected bravo, got %q %v", k, ok)
	}
	if _, ok := ParseReactionKind("angry"); ok {
		t.Fatal("angry must be rejected")
	}
}
