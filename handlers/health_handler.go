package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbanflow/urbanflow-backend/services"
	"github.com/urbanflow/urbanflow-backend/types"
)

type HealthHandler struct {
	healthService *services.HealthService
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// LivenessCheck answers the liveness probe. The process serving requests is
// the only condition; upstream engines and the cache do not factor in.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck answers the readiness probe. A degraded cache still serves
// traffic (recent searches are best-effort), so only a hard DOWN returns 503.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth reports per-component status, version, and uptime.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}
