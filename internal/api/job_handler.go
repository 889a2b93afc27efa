package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joblisting/internal/job"
)

// JobHandler 暴露职位目录。
type JobHandler struct {
	jobs *job.Service
}

// NewJobHandler 构造 JobHandler。
func NewJobHandler(jobs *job.Service) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Salary      string `json:"salary" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (r jobRequest) input() (job.Input, bool) {
	in := job.Input{
		Title:       sanitizeText(r.Title),
		Company:     sanitizeText(r.Company),
		Location:    sanitizeText(r.Location),
		Salary:      sanitizeText(r.Salary),
		Description: sanitizeText(r.Description),
	}
	ok := in.Title != "" && in.Company != "" && in.Location != "" && in.Salary != "" && in.Description != ""
	return in, ok
}

// List 返回全部职位，最新的在前。
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Get 返回单个职位。
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	j, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

// Create 新建职位。
func (h *JobHandler) Create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	in, ok := req.input()
	if !ok {
		BadRequest(c, "all job fields are required")
		return
	}
	id, err := h.jobs.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update 修改职位。
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	in, ok := req.input()
	if !ok {
		BadRequest(c, "all job fields are required")
		return
	}
	if err := h.jobs.Update(c.Request.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete 删除职位，已有投递不受影响。
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
