package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/middleware"
	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

func currentUser(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return nil, false
	}
	return user, true
}

// pathID parses a numeric path parameter, answering 400 itself when it is malformed.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// userView hides nothing sensitive beyond what the model already excludes from JSON.
func userView(u models.User) gin.H {
	return gin.H{
		"id":                    u.ID,
		"first_name":            u.FirstName,
		"last_name":             u.LastName,
		"display_name":          u.DisplayName(),
		"email":                 u.Email,
		"service":               u.Service,
		"role":                  u.Role,
		"is_admin":              u.IsAdmin,
		"is_oauth_user":         u.IsOAuthUser,
		"avatar":                u.Avatar,
		"notifications_enabled": u.NotificationsEnabled,
		"created_at":            u.CreatedAt,
	}
}

type postView struct {
	models.Post
	ContentHTML  string               `json:"content_html"`
	UserReaction *models.ReactionKind `json:"user_reaction"`
}

func newPostView(p models.Post, viewer *models.User) postView {
	v := postView{Post: p, ContentHTML: utils.RenderMarkdown(p.Content)}
	if viewer != nil {
		if kind, ok := p.ReactionSet().KindOf(viewer.ID); ok {
			v.UserReaction = &kind
		}
	}
	return v
}

func postViews(posts []models.Post, viewer *models.User) []postView {
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostView(p, viewer))
	}
	return out
}

func pageView(items interface{}, total int64, page, pageSize int) gin.H {
	return gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
}
