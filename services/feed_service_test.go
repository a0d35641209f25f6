package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/models"
)

func seedPost(t *testing.T, gdb *gorm.DB, owner *models.User, created time.Time, total int, status models.PostStatus) *models.Post {
	t.Helper()
	set := models.NewReactionSet()
	for i := 0; i < total; i++ {
		set, _ = set.Toggle(uint(1000+i), "fan", models.ReactionLike, created)
	}
	p := &models.Post{
		Content:         "post " + created.Format(time.RFC3339),
		Author:          owner.DisplayName(),
		OwnerUserID:     owner.ID,
		Service:         models.ServiceGeneral,
		Status:          status,
		PinnedLocations: datatypes.JSONSlice[models.PinLocation]{},
		Reactions:       datatypes.NewJSONType(set),
		ReactionTotal:   set.Total(),
		CreatedAt:       created,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return p
}

func pinGeneral(t *testing.T, gdb *gorm.DB, p *models.Post, locations ...models.PinLocation) {
	t.Helper()
	err := gdb.Model(p).Updates(map[string]interface{}{
		"is_pinned":        true,
		"pinned_locations": datatypes.JSONSlice[models.PinLocation](locations),
		"pinned_at":        p.CreatedAt,
	}).Error
	if err != nil {
		t.Fatalf("failed to pin: %v", err)
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 9, 0, 0, 0, time.UTC)
}

func newTestFeed(gdb *gorm.DB) *FeedService {
	f := NewFeedService(gdb, 10, 3)
	f.now = func() time.Time { return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC) }
	return f
}

type expectedItem struct {
	id     uint
	reason FeedReason
}

func assertFeed(t *testing.T, got []FeedItem, want []expectedItem) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Post.ID != want[i].id || got[i].Reason != want[i].reason {
			t.Fatalf("item %d: expected post %d (%s), got post %d (%s)", i, want[i].id, want[i].reason, got[i].Post.ID, got[i].Reason)
		}
	}
}

func TestComposeGeneralScenario(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)

	p1 := seedPost(t, gdb, owner, day(time.October, 2), 5, models.PostApproved)
	p2 := seedPost(t, gdb, owner, day(time.October, 3), 2, models.PostApproved)
	p3 := seedPost(t, gdb, owner, day(time.October, 4), 8, models.PostApproved)
	p4 := seedPost(t, gdb, owner, day(time.September, 20), 50, models.PostApproved)
	p5 := seedPost(t, gdb, owner, day(time.September, 10), 0, models.PostApproved)
	seedPost(t, gdb, owner, day(time.October, 10), 99, models.PostPending)
	seedPost(t, gdb, owner, day(time.October, 11), 99, models.PostRejected)

	items, err := newTestFeed(gdb).ComposeGeneral(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	assertFeed(t, items, []expectedItem{
		{p3.ID, ReasonTopOfMonth},
		{p2.ID, ReasonRecent},
		{p1.ID, ReasonRecent},
		{p4.ID, ReasonRecent},
		{p5.ID, ReasonFiller},
	})
}

func TestComposeGeneralPinnedFirstWithoutDuplicates(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)

	p1 := seedPost(t, gdb, owner, day(time.October, 2), 5, models.PostApproved)
	p2 := seedPost(t, gdb, owner, day(time.October, 3), 2, models.PostApproved)
	p3 := seedPost(t, gdb, owner, day(time.October, 4), 8, models.PostApproved)
	old := seedPost(t, gdb, owner, day(time.March, 1), 0, models.PostApproved)
	serviceOnly := seedPost(t, gdb, owner, day(time.October, 1), 0, models.PostApproved)

	pinGeneral(t, gdb, old, models.PinGeneral)
	// Top of month is also pinned: it keeps the pinned reason.
	pinGeneral(t, gdb, p3, models.PinGeneral, models.PinService)
	pinGeneral(t, gdb, serviceOnly, models.PinService)

	items, err := newTestFeed(gdb).ComposeGeneral(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	assertFeed(t, items, []expectedItem{
		{p3.ID, ReasonPinned},
		{old.ID, ReasonPinned},
		{p2.ID, ReasonRecent},
		{p1.ID, ReasonRecent},
		{serviceOnly.ID, ReasonRecent},
	})

	seen := map[uint]bool{}
	for _, it := range items {
		if seen[it.Post.ID] {
			t.Fatalf("post %d appears twice", it.Post.ID)
		}
		seen[it.Post.ID] = true
	}
}

func TestComposeGeneralTopOfMonthTieBreaksOnOldest(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)

	first := seedPost(t, gdb, owner, day(time.October, 5), 3, models.PostApproved)
	seedPost(t, gdb, owner, day(time.October, 6), 3, models.PostApproved)
	// Created after now: never top of month.
	seedPost(t, gdb, owner, day(time.October, 20), 10, models.PostApproved)

	items, err := newTestFeed(gdb).ComposeGeneral(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(items) != 3 || items[0].Post.ID != first.ID || items[0].Reason != ReasonTopOfMonth {
		t.Fatalf("unexpected feed %+v", items)
	}
}

func TestComposeGeneralRespectsPageSize(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)
	for d := 1; d <= 15; d++ {
		seedPost(t, gdb, owner, day(time.August, d), 0, models.PostApproved)
	}

	items, err := newTestFeed(gdb).ComposeGeneral(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	for i, it := range items {
		want := ReasonFiller
		if i < 3 {
			want = ReasonRecent
		}
		if it.Reason != want {
			t.Fatalf("item %d: expected %s, got %s", i, want, it.Reason)
		}
	}
}

func TestComposeGeneralEmptyStore(t *testing.T) {
	gdb := setupServiceTestDB(t)

	items, err := newTestFeed(gdb).ComposeGeneral(context.Background())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}
}
