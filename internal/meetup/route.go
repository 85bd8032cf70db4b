package meetup

import (
	"math"
	"sort"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/models"
)

const (
	directMinutesPerKm   = 3
	directMinimumMinutes = 5
	guessMinutesPerKm    = 4
	guessMinimumMinutes  = 10
	transferPenaltyMin   = 5
	maxTransferOptions   = 5
)

// RouteEstimate is a rough door-to-door subway estimate between two stations
type RouteEstimate struct {
	From           models.Station `json:"from_station"`
	To             models.Station `json:"to_station"`
	TravelMinutes  int            `json:"travel_time_minutes"`
	SuggestedLines []string       `json:"suggested_lines"`
	Transfers      int            `json:"transfers"`
}

type transferOption struct {
	station models.Station
	score   float64
}

// EstimateRoute estimates travel between from and to. Stations sharing a
// line get a direct ride; otherwise the best station connected to both by a
// line is used for one transfer. Legs through a transfer station are always
// direct, so estimates never chain more than one transfer.
func (o *Optimizer) EstimateRoute(from, to models.Station) RouteEstimate {
	est := RouteEstimate{From: from, To: to}

	if direct, ok := directRoute(from, to); ok {
		est.TravelMinutes = direct.minutes
		est.SuggestedLines = direct.lines
		return est
	}

	est.Transfers = 1
	if options := o.transferStations(from, to); len(options) > 0 {
		via := options[0].station
		leg1, _ := directRoute(from, via)
		leg2, _ := directRoute(via, to)

		est.TravelMinutes = leg1.minutes + leg2.minutes + transferPenaltyMin
		est.SuggestedLines = firstN(append(append([]string{}, leg1.lines...), leg2.lines...), 3)
		return est
	}

	km := distanceKm(from, to)
	est.TravelMinutes = max(guessMinimumMinutes, int(math.Round(km*guessMinutesPerKm)))
	est.SuggestedLines = firstN(append(append([]string{}, from.Lines...), to.Lines...), 2)
	return est
}

type leg struct {
	minutes int
	lines   []string
}

func directRoute(from, to models.Station) (leg, bool) {
	shared := commonLines(from, to)
	if len(shared) == 0 {
		return leg{}, false
	}
	km := distanceKm(from, to)
	return leg{
		minutes: max(directMinimumMinutes, int(math.Round(km*directMinutesPerKm))),
		lines:   firstN(shared, 2),
	}, true
}

// transferStations ranks stations reachable from both endpoints without a
// change, preferring small detours and well-connected stations
func (o *Optimizer) transferStations(from, to models.Station) []transferOption {
	direct := distanceKm(from, to)

	var options []transferOption
	for _, st := range o.stations {
		if st.ID == from.ID || st.ID == to.ID {
			continue
		}
		if len(commonLines(from, st)) == 0 || len(commonLines(st, to)) == 0 {
			continue
		}

		total := distanceKm(from, st) + distanceKm(st, to)
		efficiency := 1.0
		if total > 0 {
			efficiency = direct / total
		}
		options = append(options, transferOption{
			station: st,
			score:   efficiency*50 + float64(len(st.Lines))*5,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].score > options[j].score
	})
	return firstN(options, maxTransferOptions)
}

func commonLines(a, b models.Station) []string {
	var shared []string
	for _, line := range a.Lines {
		if b.ServesLine(line) {
			shared = append(shared, line)
		}
	}
	return shared
}

func distanceKm(a, b models.Station) float64 {
	return location.Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
