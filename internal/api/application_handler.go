package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joblisting/internal/application"
	"joblisting/internal/errcode"
	"joblisting/internal/job"
	"joblisting/internal/resume"
)

// ApplicationHandler 处理投递的提交与审批。
type ApplicationHandler struct {
	applications *application.Service
	jobs         *job.Service
	resumes      *resume.Service
}

// NewApplicationHandler 构造 ApplicationHandler。
func NewApplicationHandler(applications *application.Service, jobs *job.Service, resumes *resume.Service) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, jobs: jobs, resumes: resumes}
}

type submitApplicationRequest struct {
	JobID         uint   `json:"job_id" binding:"required"`
	ApplicantName string `json:"applicant_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CoverLetter   string `json:"cover_letter"`
}

// Submit 以职位当前的标题与公司作为快照提交投递。姓名或邮箱留空时取自已填好的简历。
func (h *ApplicationHandler) Submit(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	j, err := h.jobs.Get(ctx, req.JobID)
	if err != nil {
		respondError(c, err)
		return
	}

	sub := application.Submission{
		Username:      username,
		JobTitle:      j.Title,
		Company:       j.Company,
		ApplicantName: sanitizeText(req.ApplicantName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		CoverLetter:   sanitizeText(req.CoverLetter),
	}
	if sub.ApplicantName == "" || sub.Email == "" {
		r, err := h.resumes.Get(ctx, username)
		if err != nil && errcode.KindOf(err) != errcode.KindNotFound {
			respondError(c, err)
			return
		}
		if err == nil && resume.IsFilled(r) {
			if sub.ApplicantName == "" {
				sub.ApplicantName = r.FullName
			}
			if sub.Email == "" {
				sub.Email = r.Email
			}
			if sub.Phone == "" {
				sub.Phone = r.Phone
			}
		}
	}
	if sub.ApplicantName == "" || sub.Email == "" {
		BadRequest(c, "applicant name and email are required")
		return
	}

	app, err := h.applications.Submit(ctx, sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListMine 返回当前用户的投递摘要。
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	rows, err := h.applications.ListForUser(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": rows})
}

// ListAll 返回全部投递。
func (h *ApplicationHandler) ListAll(c *gin.Context) {
	apps, err := h.applications.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
	// Notify 缺省为 true；显式传 false 时只改状态不通知投递人。
	Notify *bool `json:"notify"`
}

// SetStatus 修改投递状态，默认同时通知投递人。
func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.Notify != nil && !*req.Notify {
		if err := h.applications.SetStatus(ctx, id, req.Status); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	app, err := h.applications.Decide(ctx, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Approve 通过投递。
func (h *ApplicationHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Reject 拒绝投递。
func (h *ApplicationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.Reject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
