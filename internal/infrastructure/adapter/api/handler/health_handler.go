package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and database health
type HealthHandler struct {
	db           Pinger
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(db Pinger, timeProvider coreport.TimeProvider, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{db: db, timeProvider: timeProvider, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code, database := "ok", http.StatusOK, "up"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", map[string]any{"error": err.Error()})
		status, code, database = "degraded", http.StatusServiceUnavailable, "down"
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": database,
		"time":     h.timeProvider.Now().UTC(),
	})
}
