package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

// FeedController serves the general and per-service feeds.
type FeedController struct {
	feed  *services.FeedService
	posts *services.PostService
}

func NewFeedController(feed *services.FeedService, posts *services.PostService) *FeedController {
	return &FeedController{feed: feed, posts: posts}
}

type feedItemView struct {
	Post   postView            `json:"post"`
	Reason services.FeedReason `json:"reason"`
}

// General returns the curated general feed.
func (f *FeedController) General(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, err := f.feed.ComposeGeneral(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err, 50040)
		return
	}
	out := make([]feedItemView, 0, len(items))
	for _, it := range items {
		out = append(out, feedItemView{Post: newPostView(it.Post, user), Reason: it.Reason})
	}
	utils.Success(ctx, gin.H{"items": out})
}

// Service returns a department tab: its pinned posts then the paginated rest.
func (f *FeedController) Service(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	feed, err := f.posts.ListServiceFeed(ctx.Request.Context(), ctx.Param("service"), page, pageSize)
	if err != nil {
		utils.Fail(ctx, err, 50041)
		return
	}
	posts := pageView(postViews(feed.Posts.Items, user), feed.Posts.Total, feed.Posts.Page, feed.Posts.PageSize)
	utils.Success(ctx, gin.H{
		"service": feed.Service,
		"pinned":  postViews(feed.Pinned, user),
		"posts":   posts,
	})
}
