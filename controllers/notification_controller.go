package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/notify"
	"github.com/intrafeed/intrafeed/utils"
)

// NotificationStore is the per-user inbox written by approval notifications.
type NotificationStore interface {
	List(ctx context.Context, userID uint, limit int64) ([]notify.InboxItem, error)
	MarkRead(ctx context.Context, userID uint, id string) (bool, error)
}

// NotificationController serves the caller's inbox. A nil store yields an always-empty inbox.
type NotificationController struct {
	inbox NotificationStore
}

func NewNotificationController(inbox NotificationStore) *NotificationController {
	return &NotificationController{inbox: inbox}
}

func (n *NotificationController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if n.inbox == nil {
		utils.Success(ctx, gin.H{"items": []notify.InboxItem{}})
		return
	}
	limit, _ := strconv.ParseInt(ctx.Query("limit"), 10, 64)
	items, err := n.inbox.List(ctx.Request.Context(), user.ID, limit)
	if err != nil {
		utils.Fail(ctx, err, 50060)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

func (n *NotificationController) MarkRead(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if n.inbox == nil {
		utils.Error(ctx, http.StatusNotFound, 40460, "notification not found")
		return
	}
	found, err := n.inbox.MarkRead(ctx.Request.Context(), user.ID, ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err, 50061)
		return
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40460, "notification not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "marked as read"})
}
