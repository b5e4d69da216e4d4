package handler

import (
	"context"
	"net/http"
	"time"

	"vtube-api/pkg/database"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/redis"
	"vtube-api/pkg/response"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.PostgresDB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: log,
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		status["database"] = "unavailable"
		healthy = false
	}

	if h.redis == nil {
		status["redis"] = "not_configured"
	} else if err := h.redis.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		status["redis"] = "unavailable"
		healthy = false
	}

	code := http.StatusOK
	message := "Service healthy"
	if !healthy {
		code = http.StatusServiceUnavailable
		message = "Service degraded"
	}

	return response.WriteJSON(w, h.logger, code, status, message)
}
