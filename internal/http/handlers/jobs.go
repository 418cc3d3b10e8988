package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/config"
	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/gin-gonic/gin"
)

type JobBoard interface {
	CreateJob(ctx context.Context, actor *auth.Session, req job.CreateRequest) (job.Job, error)
	ListJobs(ctx context.Context, actor *auth.Session, filter job.ListFilter) ([]job.Job, error)
	AdminDashboard(ctx context.Context, actor *auth.Session) (service.AdminDashboard, error)
	StudentDashboard(ctx context.Context, actor *auth.Session) (service.StudentDashboard, error)
}

type JobsHandler struct {
	board JobBoard
}

func NewJobsHandler(board JobBoard) *JobsHandler {
	return &JobsHandler{board: board}
}

type listJobsQuery struct {
	Type   string `form:"type" json:"type" binding:"omitempty,oneof=full-time part-time contract internship"`
	Status string `form:"status" json:"status" binding:"omitempty,oneof=open closed"`
}

// POST /jobs
func (h *JobsHandler) Create(ctx *gin.Context) {
	var req job.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	j, err := h.board.CreateJob(cctx, middlewares.SessionFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, j)
}

// GET /jobs?type=&status=
func (h *JobsHandler) List(ctx *gin.Context) {
	var q listJobsQuery

	if !BindQuery(ctx, &q) {
		return
	}

	var filter job.ListFilter
	if q.Type != "" {
		t := job.Type(q.Type)
		filter.Type = &t
	}
	if q.Status != "" {
		s := job.Status(q.Status)
		filter.Status = &s
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.board.ListJobs(cctx, middlewares.SessionFromContext(ctx), filter)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	// clients revalidate with If-None-Match
	ctx.Header("Cache-Control", "private, no-cache")

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GET /admin/dashboard
func (h *JobsHandler) AdminDashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.board.AdminDashboard(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, d)
}

// GET /student/dashboard
func (h *JobsHandler) StudentDashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.board.StudentDashboard(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, d)
}
