package http

import (
	"WAGroups-Backend/internal/analytics"
	"WAGroups-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler serves health checks and basic metrics.
type HealthHandler struct {
	storage  repository.Storage
	recorder analytics.Recorder
	log      *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storage repository.Storage, recorder analytics.Recorder, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		recorder: recorder,
		log:      log,
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health probes the database and reports overall service health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"

	// Cheap probe: fetch a group that cannot exist; anything but NotFound
	// means the store is unwell.
	_, err := h.storage.GetGroup(ctx, -1)
	if err != nil && !errors.Is(err, repository.ErrGroupNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        "1.0.0",
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}, statusCode)
}

// Ready is the readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	}, http.StatusOK)
}

// Metrics exposes uptime and telemetry queue numbers.
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": time.Since(startTime).Seconds(),
		"timestamp":      time.Now(),
		"version":        "1.0.0",
	}
	if h.recorder != nil {
		metrics["telemetry"] = h.recorder.GetStats()
	}

	writeJSON(w, metrics, http.StatusOK)
}
