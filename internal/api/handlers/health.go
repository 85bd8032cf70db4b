// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

// Version is reported by the health and index endpoints
const Version = "1.0.0"

// HealthHandler reports liveness and whether the station catalog is usable
type HealthHandler struct {
	stations  StationProvider
	startedAt time.Time
}

func NewHealthHandler(stations StationProvider) *HealthHandler {
	return &HealthHandler{stations: stations, startedAt: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count := h.stations.Count()

	status, code := "OK", http.StatusOK
	if count == 0 {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"version":        Version,
		"stations":       count,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"checked_at":     time.Now().UTC().Format(time.RFC3339),
	})
}
