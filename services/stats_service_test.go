package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

func TestStatsOverview(t *testing.T) {
	gdb := setupServiceTestDB(t)
	owner := seedUser(t, gdb, "ada", models.ServiceRH, false)
	seedUser(t, gdb, "eve", models.ServiceRH, true)
	seedPost(t, gdb, owner, time.Now(), 0, models.PostApproved)
	seedPost(t, gdb, owner, time.Now(), 0, models.PostPending)
	seedPost(t, gdb, owner, time.Now(), 0, models.PostPending)

	stats, err := NewStatsService(gdb).Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if stats.PostsByStatus[models.PostPending] != 2 || stats.PostsByStatus[models.PostApproved] != 1 || stats.PostsByStatus[models.PostRejected] != 0 {
		t.Fatalf("unexpected status counts %+v", stats.PostsByStatus)
	}
	if stats.PostsByService[models.ServiceGeneral] != 3 || stats.PostsByService[models.ServiceRH] != 0 {
		t.Fatalf("unexpected service counts %+v", stats.PostsByService)
	}
	if stats.Users != 2 || stats.Admins != 1 {
		t.Fatalf("unexpected user counts %+v", stats)
	}
}

func TestStatsOverviewIsCachedAndInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	utils.SetRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { utils.SetRedis(nil) })

	gdb := setupServiceTestDB(t)
	admin := seedUser(t, gdb, "eve", models.ServiceRH, true)
	stats := NewStatsService(gdb)
	posts := NewPostService(gdb, nil, nil)
	ctx := context.Background()

	first, err := stats.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if first.PostsByStatus[models.PostApproved] != 0 {
		t.Fatalf("unexpected counts %+v", first.PostsByStatus)
	}

	// A direct insert bypasses invalidation: the cached value is served.
	seedPost(t, gdb, admin, time.Now(), 0, models.PostApproved)
	cached, _ := stats.Overview(ctx)
	if cached.PostsByStatus[models.PostApproved] != 0 {
		t.Fatalf("expected cached counts, got %+v", cached.PostsByStatus)
	}

	if _, err := posts.Create(ctx, PostDraft{Content: "fresh"}, admin); err != nil {
		t.Fatalf("create: %v", err)
	}
	posts.Wait()
	fresh, _ := stats.Overview(ctx)
	if fresh.PostsByStatus[models.PostApproved] != 2 {
		t.Fatalf("expected invalidated counts, got %+v", fresh.PostsByStatus)
	}
}
