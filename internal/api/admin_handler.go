package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joblisting/internal/account"
	"joblisting/internal/application"
	"joblisting/internal/contact"
	"joblisting/internal/job"
)

// AdminHandler 提供用户管理与仪表盘统计。
type AdminHandler struct {
	accounts     *account.Service
	jobs         *job.Service
	applications *application.Service
	messages     *contact.Service
}

// NewAdminHandler 构造 AdminHandler。
func NewAdminHandler(accounts *account.Service, jobs *job.Service, applications *application.Service, messages *contact.Service) *AdminHandler {
	return &AdminHandler{accounts: accounts, jobs: jobs, applications: applications, messages: messages}
}

// ListUsers 返回全部用户及其在线状态。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	rows, err := h.accounts.ListUsersWithSessionStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// ListActiveUsers 返回当前在线的用户。
func (h *AdminHandler) ListActiveUsers(c *gin.Context) {
	rows, err := h.accounts.ListActiveUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// DeleteUser 级联删除用户。调用方须同时提供 id 与 ?username=，两者须指向同一账号。
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		BadRequest(c, "username query parameter is required")
		return
	}
	if err := h.accounts.DeleteUser(c.Request.Context(), id, username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type failedDeletion struct {
	Username string `json:"username"`
	Error    string `json:"error"`
}

// BulkDeleteUsers 删除除管理员外的全部用户，返回成功与失败的用户名。
func (h *AdminHandler) BulkDeleteUsers(c *gin.Context) {
	result, err := h.accounts.BulkDeleteAllExceptAdmin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	failed := make([]failedDeletion, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, failedDeletion{Username: f.Username, Error: f.Err.Error()})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   result.Count(),
		"deleted": result.Deleted,
		"failed":  failed,
	})
}

// Stats 返回仪表盘计数。
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	jobs, err := h.jobs.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	apps, err := h.applications.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	pending, err := h.applications.PendingCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	active, err := h.accounts.ActiveUserCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.messages.UnreadCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":                 jobs,
		"applications":         apps,
		"pending_applications": pending,
		"active_users":         active,
		"unread_contact":       unread,
	})
}
