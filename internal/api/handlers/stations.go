package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/models"
)

const (
	defaultNearRadius = 800  // ~0.5 mile in meters
	maxNearRadius     = 3200 // ~2 miles
	minNearRadius     = 100
	defaultNearLimit  = 5
	maxNearLimit      = 20
)

type StationHandler struct {
	stations StationProvider
}

func NewStationHandler(stations StationProvider) *StationHandler {
	return &StationHandler{stations: stations}
}

// ListStations returns stations, optionally filtered by borough, line and name
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stations := h.stations.Search(q.Get("q"))

	if borough := q.Get("borough"); borough != "" {
		stations = intersect(stations, h.stations.ByBorough(borough))
	}
	if line := q.Get("line"); line != "" {
		stations = intersect(stations, h.stations.ByLine(strings.ToUpper(line)))
	}
	if stations == nil {
		stations = []models.Station{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"stations": stations,
		"count":    len(stations),
	})
}

// GetStation returns one station by id
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	station, ok := lookupStation(w, h.stations, r.PathValue("id"))
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"station": station,
	})
}

// GetBoroughs lists the boroughs present in the catalog
func (h *StationHandler) GetBoroughs(w http.ResponseWriter, r *http.Request) {
	boroughs := h.stations.Boroughs()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"boroughs": boroughs,
		"count":    len(boroughs),
	})
}

// GetStationsNear returns stations near lat/lng coordinates
func (h *StationHandler) GetStationsNear(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")

	if latStr == "" || lngStr == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "lat and lng query parameters are required")
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid lat parameter")
		return
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid lng parameter")
		return
	}

	radius := parseIntQueryParam(r, "radius", defaultNearRadius, minNearRadius, maxNearRadius)
	limit := parseIntQueryParam(r, "limit", defaultNearLimit, 1, maxNearLimit)

	nearby := h.stations.Nearby(lat, lng, float64(radius)/1000)
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}

	resp := map[string]any{
		"success":       true,
		"lat":           lat,
		"lng":           lng,
		"radius_meters": radius,
		"stations":      nearby,
		"count":         len(nearby),
	}
	if len(nearby) == 0 {
		// Nothing in range; point the caller at the nearest station instead
		resp["stations"] = []models.StationWithDistance{}
		resp["nearest"] = h.stations.Closest(lat, lng, 1)
	}

	writeJSON(w, http.StatusOK, resp)
}

// lookupStation resolves a station id, writing a 404 when it is unknown
func lookupStation(w http.ResponseWriter, stations StationProvider, id string) (models.Station, bool) {
	station, err := stations.Get(id)
	if err != nil {
		if errors.Is(err, location.ErrStationNotFound) {
			writeError(w, http.StatusNotFound, "station_not_found", "Station "+id+" is not in the catalog")
			return models.Station{}, false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return models.Station{}, false
	}
	return station, true
}

func intersect(a, b []models.Station) []models.Station {
	ids := make(map[string]bool, len(b))
	for _, st := range b {
		ids[st.ID] = true
	}

	var out []models.Station
	for _, st := range a {
		if ids[st.ID] {
			out = append(out, st)
		}
	}
	return out
}
