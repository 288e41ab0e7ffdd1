package handlers

import (
	"context"
	"net/http"
	"time"

	"manualrag/internal/contextutil"
	"manualrag/internal/service"
)

// SessionCounter reports the number of open chat sessions.
type SessionCounter interface {
	Active() int
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	manuals            service.ManualService
	sessions           SessionCounter
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(manuals service.ManualService, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{
		manuals:            manuals,
		sessions:           sessions,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// "ok" when the vector index is reachable, "degraded" otherwise.
	Status string `json:"status"`

	// "connected" or "disconnected".
	Connection string `json:"connection"`

	ActiveSessions int `json:"active_sessions"`
}

// ServeHTTP handles GET /health. It always answers 200; the body says whether
// the vector index is usable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Connection: "connected"}
	if err := h.manuals.Ping(checkCtx); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		resp.Status = "degraded"
		resp.Connection = "disconnected"
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.Active()
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
