package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is one readiness dependency; nil checks are skipped.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	version string
	checks  []Check
}

func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Event Management API is running",
		"version": h.version,
	})
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
	defer cancel()

	failed := gin.H{}
	for _, c := range h.checks {
		if c.Ping == nil {
			continue
		}
		if err := c.Ping(cctx); err != nil {
			failed[c.Name] = "unavailable"
		}
	}

	if len(failed) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": failed})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
