package handler

import (
	"net/http"
	"time"

	"stablecoin-exchange/internal/adapter/http/dto"
	"stablecoin-exchange/internal/core/ports"
	"stablecoin-exchange/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateHandler handles conversion rate endpoints.
type RateHandler struct {
	oracle ports.RateOracle
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(oracle ports.RateOracle) *RateHandler {
	return &RateHandler{oracle: oracle}
}

// GetCurrent handles GET /api/v1/rates/current.
func (h *RateHandler) GetCurrent(c *gin.Context) {
	quote, err := h.oracle.CurrentRate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RateResponse{
		Rate: quote.Rate.String(),
		AsOf: quote.AsOf.UTC().Format(time.RFC3339),
	})
}

// HealthCheck handles GET /health, a deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
