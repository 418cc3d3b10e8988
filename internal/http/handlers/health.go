package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks one dependency. Name shows up in the readiness report.
type Pinger struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	deps []Pinger
}

// create a new instance of the health handler
func NewHealthHandler(deps ...Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checks := make(map[string]string, len(h.deps))
	ready := true

	for _, d := range h.deps {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
		err := d.Ping(cctx)
		cancel()

		if err != nil {
			ready = false
			checks[d.Name] = "down"
			continue
		}
		checks[d.Name] = "up"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
