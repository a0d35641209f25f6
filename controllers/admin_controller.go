package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

// AdminController groups moderation, user administration and statistics.
type AdminController struct {
	posts *services.PostService
	users *services.UserService
	stats *services.StatsService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(posts *services.PostService, users *services.UserService, stats *services.StatsService) *AdminController {
	return &AdminController{posts: posts, users: users, stats: stats}
}

// ListPending returns the moderation queue, oldest first.
func (a *AdminController) ListPending(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := a.posts.ListPending(ctx.Request.Context(), page, pageSize)
	if err != nil {
		utils.Fail(ctx, err, 50050)
		return
	}
	utils.Success(ctx, pageView(postViews(result.Items, user), result.Total, result.Page, result.PageSize))
}

func (a *AdminController) Approve(ctx *gin.Context) {
	admin, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	post, err := a.posts.Approve(ctx.Request.Context(), id, admin)
	if err != nil {
		utils.Fail(ctx, err, 50051)
		return
	}
	utils.Success(ctx, gin.H{"post": newPostView(*post, admin)})
}

func (a *AdminController) Reject(ctx *gin.Context) {
	admin, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body means no reason.
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
			return
		}
	}
	post, err := a.posts.Reject(ctx.Request.Context(), id, admin, req.Reason)
	if err != nil {
		utils.Fail(ctx, err, 50052)
		return
	}
	utils.Success(ctx, gin.H{"post": newPostView(*post, admin)})
}

// Pin pins (locations general/service) or unpins a post.
func (a *AdminController) Pin(ctx *gin.Context) {
	admin, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req services.PinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}
	post, err := a.posts.SetPin(ctx.Request.Context(), id, req, admin)
	if err != nil {
		utils.Fail(ctx, err, 50053)
		return
	}
	utils.Success(ctx, gin.H{"post": newPostView(*post, admin)})
}

func (a *AdminController) History(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	logs, err := a.posts.History(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err, 50054)
		return
	}
	utils.Success(ctx, gin.H{"items": logs})
}

func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := a.users.List(ctx.Request.Context(), page, pageSize)
	if err != nil {
		utils.Fail(ctx, err, 50055)
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, userView(u))
	}
	utils.Success(ctx, pageView(items, result.Total, result.Page, result.PageSize))
}

// SetAdmin grants or revokes administrator rights.
func (a *AdminController) SetAdmin(ctx *gin.Context) {
	admin, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "is_admin is required")
		return
	}
	user, err := a.users.SetAdmin(ctx.Request.Context(), admin, id, *req.IsAdmin)
	if err != nil {
		utils.Fail(ctx, err, 50056)
		return
	}
	utils.Success(ctx, userView(*user))
}

func (a *AdminController) Stats(ctx *gin.Context) {
	stats, err := a.stats.Overview(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err, 50057)
		return
	}
	utils.Success(ctx, stats)
}
