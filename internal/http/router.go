package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/http/handlers"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Log      *slog.Logger
	Env      string
	Accounts interface {
		handlers.AccountService
		handlers.StudentAdmin
	}
	Board    handlers.JobBoard
	Sessions middlewares.SessionValidator

	// Prom and Gatherer may be nil; /metrics is then not mounted.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// RateCounter backs the auth rate limiter. nil keeps counts in memory.
	RateCounter    middlewares.Counter
	AuthRateLimit  int
	AuthRateWindow time.Duration
	// WriteRateLimit applies per admin to job and student mutations.
	WriteRateLimit int

	CORSOrigins  []string
	SecureCookie bool
	Ready        []handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(d.SecureCookie))
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	authMW := middlewares.NewAuthMiddleware(d.Sessions)
	r.Use(authMW.Authenticate())

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	// health
	h := handlers.NewHealthHandler(d.Ready...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Prom != nil && d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limiter := middlewares.NewRateLimiter(d.RateCounter, d.AuthRateLimit, d.AuthRateWindow, d.Prom)
	perIP := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	writeLimiter := middlewares.NewRateLimiter(d.RateCounter, d.WriteRateLimit, d.AuthRateWindow, d.Prom)
	perUser := writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	authHandler := handlers.NewAuthHandler(d.Accounts, d.SecureCookie, d.Prom)
	studentsHandler := handlers.NewStudentsHandler(d.Accounts)
	jobsHandler := handlers.NewJobsHandler(d.Board)

	anyUser := middlewares.Require(authz.AnyAuthenticated, d.Prom)
	adminOnly := middlewares.Require(authz.AdminOnly, d.Prom)
	approvedStudent := middlewares.Require(authz.ApprovedStudent, d.Prom)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", perIP, authHandler.Register)
		authGroup.POST("/login", perIP, authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", anyUser, authHandler.Me)
	}

	r.GET("/jobs", anyUser, jobsHandler.List)
	r.POST("/jobs", adminOnly, perUser, jobsHandler.Create)

	admin := r.Group("/admin", adminOnly)
	{
		admin.GET("/students", studentsHandler.List)
		admin.POST("/students/:id/approve", perUser, studentsHandler.Approve)
		admin.POST("/students/:id/reject", perUser, studentsHandler.Reject)
		admin.DELETE("/students/:id", perUser, studentsHandler.Delete)
		admin.GET("/dashboard", jobsHandler.AdminDashboard)
	}

	r.GET("/student/dashboard", approvedStudent, jobsHandler.StudentDashboard)

	return r
}
