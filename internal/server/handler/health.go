package handler

import (
	"net/http"
	"time"
)

// HealthService reports feed cache liveness.
type HealthService interface {
	CacheStale() bool
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	health    HealthService
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(health HealthService) *HealthHandler {
	return &HealthHandler{
		health:    health,
		startedAt: time.Now(),
	}
}

// HealthCheck responds with server liveness and cache freshness. The server
// stays healthy while serving stale data; staleness is informational.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"cacheStale": h.health.CacheStale(),
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
