package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joblisting/internal/resume"
)

// ResumeHandler 负责当前用户的简历读写。
type ResumeHandler struct {
	resumes *resume.Service
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(resumes *resume.Service) *ResumeHandler {
	return &ResumeHandler{resumes: resumes}
}

// Get 返回当前用户的简历。
func (h *ResumeHandler) Get(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	r, err := h.resumes.Get(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resume":     resume.ContentOf(r),
		"filled":     resume.IsFilled(r),
		"updated_at": r.UpdatedAt,
	})
}

// Put 写入或覆盖当前用户的简历。
func (h *ResumeHandler) Put(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	var req resume.Content
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	content := resume.Content{
		FullName:   sanitizeText(req.FullName),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    sanitizeText(req.Address),
		Education:  sanitizeText(req.Education),
		Experience: sanitizeText(req.Experience),
		Skills:     sanitizeText(req.Skills),
		Summary:    sanitizeText(req.Summary),
	}

	r, err := h.resumes.Upsert(c.Request.Context(), username, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resume":     resume.ContentOf(r),
		"filled":     resume.IsFilled(r),
		"updated_at": r.UpdatedAt,
	})
}

// Status 返回简历是否存在、是否已填好，前端据此决定是否提供一键投递。
func (h *ResumeHandler) Status(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	exists, err := h.resumes.Exists(ctx, username)
	if err != nil {
		respondError(c, err)
		return
	}
	filled, err := h.resumes.Filled(ctx, username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists, "filled": filled})
}
