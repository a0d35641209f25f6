package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

// PostController exposes post CRUD and reactions.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// CreatePost submits a post for moderation (published immediately for admins).
func (p *PostController) CreatePost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req services.PostDraft
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), req, user)
	if err != nil {
		utils.Fail(ctx, err, 50020)
		return
	}
	utils.Created(ctx, gin.H{"post": newPostView(*post, user)})
}

// ListPosts returns approved posts, newest first, optionally for one service.
func (p *PostController) ListPosts(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := p.posts.ListApproved(ctx.Request.Context(), services.ListFilter{
		Service:  ctx.Query("service"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.Fail(ctx, err, 50021)
		return
	}
	utils.Success(ctx, pageView(postViews(result.Items, user), result.Total, result.Page, result.PageSize))
}

// ListMyPosts returns posts created by the authenticated user in every status.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := p.posts.ListByOwner(ctx.Request.Context(), user.ID, page, pageSize)
	if err != nil {
		utils.Fail(ctx, err, 50028)
		return
	}
	utils.Success(ctx, pageView(postViews(result.Items, user), result.Total, result.Page, result.PageSize))
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.posts.Get(ctx.Request.Context(), id, user)
	if err != nil {
		utils.Fail(ctx, err, 50023)
		return
	}
	utils.Success(ctx, gin.H{"post": newPostView(*post, user)})
}

// UpdatePost edits title, content, service or attachments.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req services.PostDraft
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	post, err := p.posts.Update(ctx.Request.Context(), id, req, user)
	if err != nil {
		utils.Fail(ctx, err, 50024)
		return
	}
	utils.Success(ctx, gin.H{"post": newPostView(*post, user)})
}

// DeletePost removes a post and its files.
func (p *PostController) DeletePost(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := p.posts.Delete(ctx.Request.Context(), id, user); err != nil {
		utils.Fail(ctx, err, 50025)
		return
	}
	utils.Success(ctx, gin.H{"message": "deleted"})
}

// ToggleReaction adds, switches or removes the caller's reaction.
func (p *PostController) ToggleReaction(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "reaction kind is required")
		return
	}
	result, err := p.posts.ToggleReaction(ctx.Request.Context(), id, user, req.Kind)
	if err != nil {
		utils.Fail(ctx, err, 50026)
		return
	}
	utils.Success(ctx, result)
}
