package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "meetmta",
		"description": "NYC subway arrivals, service alerts and meetup planning",
		"version":     Version,
		"endpoints": map[string]string{
			"GET /api":                  "API information",
			"GET /health":               "Health check",
			"GET /metrics":              "Prometheus metrics",
			"GET /stations":             "List stations (?borough=, ?line=, ?q=)",
			"GET /stations/boroughs":    "Boroughs in the catalog",
			"GET /stations/near":        "Stations near a point (?lat=, ?lng=, ?radius=, ?limit=)",
			"GET /stations/{id}":        "One station",
			"GET /stations/{id}/trains": "Trains arriving in the next 30 minutes",
			"GET /trains":               "Trains for several stations (?stations=a,b)",
			"GET /alerts":               "Service alerts (?lines=N,Q)",
			"POST /meetup":              "Find a meeting station for two people",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the /api endpoint for available routes",
	})
}
