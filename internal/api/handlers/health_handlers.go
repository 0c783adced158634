package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wealthlens/quant_service/internal/infrastructure/cache"
	"github.com/wealthlens/quant_service/pkg/version"
)

// HealthHandlers exposes liveness, readiness and version probes.
type HealthHandlers struct {
	cache     *cache.Client
	startedAt time.Time
}

func NewHealthHandlers(cacheClient *cache.Client) *HealthHandlers {
	return &HealthHandlers{
		cache:     cacheClient,
		startedAt: time.Now(),
	}
}

// Health reports overall service health and dependency status.
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandlers) Health(c *gin.Context) {
	deps := gin.H{}
	status := "healthy"

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			deps["redis"] = "unavailable"
			status = "degraded"
		} else {
			deps["redis"] = "ok"
		}
	} else {
		deps["redis"] = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"service":      "quant-service",
		"version":      version.Version,
		"uptime":       time.Since(h.startedAt).String(),
		"dependencies": deps,
	})
}

// Ready reports whether the service can accept traffic. The engine is
// pure computation, so readiness only requires the process to be up.
func (h *HealthHandlers) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live is the liveness probe.
func (h *HealthHandlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Version returns build information.
func (h *HealthHandlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
