package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/models/dto"
)

// Pinger reports whether the record store is reachable.
type Pinger func(ctx context.Context) error

// HealthController reports liveness and database reachability
type HealthController struct {
	driver string
	ping   Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(driver string, ping Pinger) *HealthController {
	return &HealthController{driver: driver, ping: ping}
}

// Health checks the database connection
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: c.driver}
	status := http.StatusOK
	if c.ping != nil {
		if err := c.ping(pingCtx); err != nil {
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	envelope := dto.NewSuccessResponse(resp)
	envelope.Success = status == http.StatusOK
	ctx.JSON(status, envelope)
}
