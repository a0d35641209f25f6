package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/models"
)

// FeedReason explains why a post was selected for the general feed.
type FeedReason string

const (
	ReasonPinned     FeedReason = "pinned"
	ReasonTopOfMonth FeedReason = "top_of_month"
	ReasonRecent     FeedReason = "recent"
	ReasonFiller     FeedReason = "filler"
)

// FeedItem is a post annotated with its single selection reason.
type FeedItem struct {
	Post   models.Post `json:"post"`
	Reason FeedReason  `json:"reason"`
}

// FeedService composes the curated general feed. Nothing is cached; every call reads the store.
type FeedService struct {
	db          *gorm.DB
	pageSize    int
	recentCount int
	now         func() time.Time
}

// NewFeedService returns a composer targeting pageSize items with recentCount recent posts.
func NewFeedService(db *gorm.DB, pageSize, recentCount int) *FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}
	if recentCount <= 0 {
		recentCount = 3
	}
	return &FeedService{db: db, pageSize: pageSize, recentCount: recentCount, now: time.Now}
}

// ComposeGeneral selects, in order: posts pinned to general, the month's most reacted post,
// the newest posts and filler up to the page size. A post appears at most once.
func (s *FeedService) ComposeGeneral(ctx context.Context) ([]FeedItem, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	items := []FeedItem{}
	selected := map[uint]bool{}
	add := func(posts []models.Post, reason FeedReason) {
		for _, p := range posts {
			if selected[p.ID] {
				continue
			}
			selected[p.ID] = true
			items = append(items, FeedItem{Post: p, Reason: reason})
		}
	}

	var pinnedCandidates []models.Post
	if err := db.Where("status = ? AND is_pinned = ?", models.PostApproved, true).
		Order("pinned_order ASC, pinned_at DESC").
		Find(&pinnedCandidates).Error; err != nil {
		return nil, err
	}
	add(lo.Filter(pinnedCandidates, func(p models.Post, _ int) bool {
		return p.PinnedIn(models.PinGeneral)
	}), ReasonPinned)

	var top []models.Post
	if err := db.Where("status = ? AND created_at >= ? AND created_at <= ?", models.PostApproved, monthStart(now), now).
		Order("reaction_total DESC, created_at ASC, id ASC").
		Limit(1).
		Find(&top).Error; err != nil {
		return nil, err
	}
	// A pinned top post keeps its pinned reason; the slot is not handed to the runner-up.
	add(top, ReasonTopOfMonth)

	recent, err := s.newest(db, lo.Keys(selected), s.recentCount)
	if err != nil {
		return nil, err
	}
	add(recent, ReasonRecent)

	if remaining := s.pageSize - len(items); remaining > 0 {
		filler, err := s.newest(db, lo.Keys(selected), remaining)
		if err != nil {
			return nil, err
		}
		add(filler, ReasonFiller)
	}
	return items, nil
}

func (s *FeedService) newest(db *gorm.DB, exclude []uint, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := db.Where("status = ?", models.PostApproved)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// monthStart is midnight on the first day of t's month, in t's location.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
