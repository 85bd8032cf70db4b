package meetup

import (
	"strings"

	"github.com/randytsao24/meetmta/internal/models"
)

func reasoning(station models.Station, route1, route2 RouteEstimate) string {
	var reasons []string

	diff := route1.TravelMinutes - route2.TravelMinutes
	if diff < 0 {
		diff = -diff
	}
	if diff <= 5 {
		reasons = append(reasons, "balanced travel times for both people")
	}

	transfers := route1.Transfers + route2.Transfers
	switch {
	case transfers == 0:
		reasons = append(reasons, "direct routes with no transfers required")
	case transfers <= 1:
		reasons = append(reasons, "minimal transfers required")
	}

	if isTransitHub(station) {
		reasons = append(reasons, "major transit hub with excellent connectivity")
	}
	if station.Borough == "Manhattan" {
		reasons = append(reasons, "central Manhattan location")
	}
	if float64(route1.TravelMinutes+route2.TravelMinutes)/2 <= 20 {
		reasons = append(reasons, "short travel times")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "optimal balance of travel time and convenience")
	}
	return "Selected for " + strings.Join(reasons, ", ") + "."
}
