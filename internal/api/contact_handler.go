package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joblisting/internal/contact"
)

// ContactHandler 处理用户留言与管理员回复。
type ContactHandler struct {
	messages *contact.Service
}

// NewContactHandler 构造 ContactHandler。
func NewContactHandler(messages *contact.Service) *ContactHandler {
	return &ContactHandler{messages: messages}
}

type contactRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Submit 提交一条留言。
func (h *ContactHandler) Submit(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	msg, err := h.messages.Submit(c.Request.Context(), contact.Submission{
		Username: username,
		Subject:  sanitizeText(req.Subject),
		Message:  sanitizeText(req.Message),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMine 返回当前用户的留言。
func (h *ContactHandler) ListMine(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	rows, err := h.messages.ListForUser(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows})
}

// ListAll 返回收件箱全部留言。
func (h *ContactHandler) ListAll(c *gin.Context) {
	rows, err := h.messages.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows})
}

// UnreadCount 返回收件箱未读数。
func (h *ContactHandler) UnreadCount(c *gin.Context) {
	count, err := h.messages.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead 标记留言已读。
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type respondRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// Respond 更新留言状态并回复；回复为空时不通知留言人。
func (h *ContactHandler) Respond(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	msg, err := h.messages.Respond(c.Request.Context(), id, req.Status, sanitizeText(req.Response))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
