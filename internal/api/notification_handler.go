package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joblisting/internal/notification"
)

// NotificationHandler 暴露当前用户的通知。
type NotificationHandler struct {
	notifications *notification.Service
}

// NewNotificationHandler 构造 NotificationHandler。
func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List 返回当前用户的通知；?unread=true 只返回未读。
func (h *NotificationHandler) List(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	ctx := c.Request.Context()
	var (
		items any
		err   error
	)
	if unreadOnly {
		items, err = h.notifications.ListUnread(ctx, username)
	} else {
		items, err = h.notifications.ListAll(ctx, username)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// UnreadCount 返回未读数。
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead 标记单条通知已读。别人的通知按不存在处理。
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	n, err := h.notifications.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if n.Username != username {
		NotFound(c, "notification not found")
		return
	}
	if err := h.notifications.MarkRead(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead 标记当前用户全部通知已读。
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkAllRead(c.Request.Context(), username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
