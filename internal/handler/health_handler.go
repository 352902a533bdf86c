package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"poolpay/internal/container"
	"poolpay/pkg/database"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
	db        *database.PostgresDB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container, db *database.PostgresDB) *HealthHandler {
	return &HealthHandler{container: container, db: db}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
	Redis     string    `json:"redis"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "poolpay",
		Database:  "ok",
		Redis:     "ok",
	}

	status := http.StatusOK
	if err := h.db.Health(r.Context()); err != nil {
		log.WithError(err).Error("Database health check failed")
		response.Status = "degraded"
		response.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if !h.container.HasRedis() {
		response.Redis = "not configured"
	} else if err := h.container.GetRedisClient().Health(r.Context()); err != nil {
		log.WithError(err).Warn("Redis health check failed")
		response.Redis = "unreachable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to encode health check response")
	}
}
