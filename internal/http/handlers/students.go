package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/config"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type StudentAdmin interface {
	ListStudents(ctx context.Context, actor *auth.Session, status *user.Status) ([]user.User, error)
	Approve(ctx context.Context, actor *auth.Session, userID string) (user.User, error)
	Reject(ctx context.Context, actor *auth.Session, userID string) error
	Delete(ctx context.Context, actor *auth.Session, userID string) error
}

type StudentsHandler struct {
	accounts StudentAdmin
}

func NewStudentsHandler(accounts StudentAdmin) *StudentsHandler {
	return &StudentsHandler{accounts: accounts}
}

// GET /admin/students?status=pending|approved
func (h *StudentsHandler) List(ctx *gin.Context) {
	var status *user.Status

	if raw := ctx.Query("status"); raw != "" {
		s := user.Status(raw)
		if !s.Valid() {
			RespondBadRequest(ctx, "Invalid status filter", gin.H{"status": "must be one of pending, approved"})
			return
		}
		status = &s
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.accounts.ListStudents(cctx, middlewares.SessionFromContext(ctx), status)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// POST /admin/students/:id/approve
func (h *StudentsHandler) Approve(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.accounts.Approve(cctx, middlewares.SessionFromContext(ctx), id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// POST /admin/students/:id/reject
func (h *StudentsHandler) Reject(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.accounts.Reject(cctx, middlewares.SessionFromContext(ctx), id); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// DELETE /admin/students/:id
func (h *StudentsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.accounts.Delete(cctx, middlewares.SessionFromContext(ctx), id); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
