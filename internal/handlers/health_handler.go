package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IndexHealth reports vector store reachability.
type IndexHealth interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles service health requests.
type HealthHandler struct {
	index IndexHealth
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(index IndexHealth) *HealthHandler {
	return &HealthHandler{index: index}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status string `json:"status"`
	Qdrant string `json:"qdrant"`
}

// Health godoc
// @Summary Service health
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	qdrantStatus := "healthy"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.index.HealthCheck(c.Request.Context()); err != nil {
		qdrantStatus = "unreachable"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{Status: status, Qdrant: qdrantStatus})
}
