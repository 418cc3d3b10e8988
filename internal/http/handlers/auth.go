package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/config"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (user.User, error)
	Login(ctx context.Context, in service.LoginInput) (service.LoginResult, error)
	Me(ctx context.Context, actor *auth.Session) (user.User, error)
}

type AuthHandler struct {
	accounts     AccountService
	secureCookie bool
	prom         *observability.Prom
}

func NewAuthHandler(accounts AccountService, secureCookie bool, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		secureCookie: secureCookie,
		prom:         prom,
	}
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

// POST /auth/register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req service.RegisterInput

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.accounts.Register(cctx, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

// POST /auth/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginInput

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt dominates; leave room for it on top of the lookup
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.accounts.Login(cctx, req)
	if err != nil {
		result := "error"
		if errors.Is(err, service.ErrInvalidCredentials) {
			result = "invalid"
		}
		h.prom.ObserveLogin(result)

		RespondServiceError(ctx, err)
		return
	}

	h.prom.ObserveLogin("ok")
	h.setSessionCookie(ctx, res.Token, res.Session.ExpiresAt)

	ctx.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
		User:      res.User,
	})
}

// POST /auth/logout
//
// Sessions are stateless so logging out only drops the cookie; a copied
// bearer token stays valid until it expires.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// GET /auth/me
func (h *AuthHandler) Me(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.accounts.Me(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// the account behind a still valid token was removed
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return
		}
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// Helper functions

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		raw,
		maxAge,
		"/",
		"",
		h.secureCookie,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.secureCookie,
		true,
	)
}
