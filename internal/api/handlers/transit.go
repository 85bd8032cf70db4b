package handlers

import (
	"errors"
	"net/http"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/models"
)

const maxStationsPerRequest = 5

type TransitHandler struct {
	stations StationProvider
	trains   TrainProvider
	alerts   AlertProvider
}

func NewTransitHandler(stations StationProvider, trains TrainProvider, alerts AlertProvider) *TransitHandler {
	return &TransitHandler{
		stations: stations,
		trains:   trains,
		alerts:   alerts,
	}
}

// GetStationTrains returns upcoming trains at a station
func (h *TransitHandler) GetStationTrains(w http.ResponseWriter, r *http.Request) {
	station, ok := lookupStation(w, h.stations, r.PathValue("id"))
	if !ok {
		return
	}

	trains, err := h.trains.TrainsAtStation(r.Context(), station.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"station": station,
		"trains":  trains,
		"count":   len(trains),
	})
}

// StationTrains is the arrivals block for one station in a multi-station response
type StationTrains struct {
	Station models.Station `json:"station"`
	Trains  []models.Train `json:"trains"`
}

// GetTrainsForStations returns trains for several stations (used by favorites)
func (h *TransitHandler) GetTrainsForStations(w http.ResponseWriter, r *http.Request) {
	ids := parseListParam(r, "stations", false)
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "stations query parameter is required (comma-separated station IDs)")
		return
	}
	if len(ids) > maxStationsPerRequest {
		ids = ids[:maxStationsPerRequest]
	}

	results := make([]StationTrains, 0, len(ids))
	for _, id := range ids {
		trains, err := h.trains.TrainsAtStation(r.Context(), id)
		if errors.Is(err, location.ErrStationNotFound) {
			continue
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		station, _ := h.stations.Get(id)
		results = append(results, StationTrains{Station: station, Trains: trains})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"stations": results,
		"count":    len(results),
	})
}

// GetServiceAlerts returns active service alerts, optionally filtered by line
func (h *TransitHandler) GetServiceAlerts(w http.ResponseWriter, r *http.Request) {
	lines := parseListParam(r, "lines", true)

	var alerts []models.ServiceAlert
	if len(lines) > 0 {
		alerts = h.alerts.AlertsForLines(r.Context(), lines)
	} else {
		alerts = h.alerts.ServiceAlerts(r.Context())
	}
	if alerts == nil {
		alerts = []models.ServiceAlert{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alerts":  alerts,
		"count":   len(alerts),
	})
}
