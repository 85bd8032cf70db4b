// Package meetup picks a subway station where two people can meet, balancing
// their travel times against transfers and station connectivity
package meetup

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/metrics"
	"github.com/randytsao24/meetmta/internal/models"
)

var (
	// ErrNoCandidates means no station lies within reach of both origins
	ErrNoCandidates = errors.New("no suitable meeting points found between the selected stations")

	// ErrNoFeasibleRoute means every candidate needs a leg longer than the allowed travel time
	ErrNoFeasibleRoute = errors.New("no meeting point found within the travel time limit")
)

// DefaultMaxTravelTime is used when Options.MaxTravelTime is unset
const DefaultMaxTravelTime = 60

const (
	maxCandidateKm   = 15.0
	maxCandidates    = 10
	minNormalizingKm = 0.01
)

var majorHubs = []string{
	"Times Square-42nd Street",
	"Union Square-14th Street",
	"Grand Central-42nd Street",
	"Herald Square-34th Street",
	"Atlantic Avenue-Barclays Center",
	"42nd Street-Bryant Park",
	"59th Street-Columbus Circle",
	"Fulton Street",
	"Jay Street-MetroTech",
	"Court Square-23rd Street",
}

// Options tunes a meeting point search
type Options struct {
	Person1Name       string
	Person2Name       string
	PreferredMeetTime time.Time // zero means now
	MaxTravelTime     int       // minutes per person
	AvoidTransfers    bool
}

// Result is the chosen meeting point with both people's routes
type Result struct {
	MeetingStation    models.Station `json:"meeting_station"`
	Person1Route      RouteEstimate  `json:"person1_route"`
	Person2Route      RouteEstimate  `json:"person2_route"`
	EstimatedMeetTime time.Time      `json:"estimated_meet_time"`
	Reasoning         string         `json:"reasoning"`
	Score             float64        `json:"score"`
}

// Catalog is the station source the optimizer searches
type Catalog interface {
	All() []models.Station
	Get(id string) (models.Station, error)
}

// Optimizer searches a fixed station set for meeting points
type Optimizer struct {
	catalog  Catalog
	stations []models.Station
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewOptimizer creates an optimizer over catalog
func NewOptimizer(catalog Catalog, m *metrics.Metrics, logger *slog.Logger) *Optimizer {
	if m == nil {
		m = metrics.Discard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{
		catalog:  catalog,
		stations: catalog.All(),
		now:      time.Now,
		metrics:  m,
		logger:   logger,
	}
}

// FindMeetingPoint resolves both station ids and searches for the best
// meeting station between them
func (o *Optimizer) FindMeetingPoint(stationA, stationB string, opts Options) (*Result, error) {
	a, err := o.catalog.Get(stationA)
	if err != nil {
		return nil, err
	}
	b, err := o.catalog.Get(stationB)
	if err != nil {
		return nil, err
	}
	return o.FindOptimalMeetingPoint(a, b, opts)
}

// FindOptimalMeetingPoint returns the best scoring candidate whose routes both
// fit within opts.MaxTravelTime
func (o *Optimizer) FindOptimalMeetingPoint(a, b models.Station, opts Options) (*Result, error) {
	if opts.MaxTravelTime <= 0 {
		opts.MaxTravelTime = DefaultMaxTravelTime
	}
	if opts.PreferredMeetTime.IsZero() {
		opts.PreferredMeetTime = o.now()
	}

	candidates := o.candidates(a, b)
	if len(candidates) == 0 {
		o.metrics.OptimizationsTotal.WithLabelValues("no_candidates").Inc()
		return nil, ErrNoCandidates
	}

	var best *Result
	for _, station := range candidates {
		route1 := o.EstimateRoute(a, station)
		route2 := o.EstimateRoute(b, station)
		if route1.TravelMinutes > opts.MaxTravelTime || route2.TravelMinutes > opts.MaxTravelTime {
			continue
		}

		score := scoreMeeting(station, route1, route2, opts.AvoidTransfers)
		if best != nil && score <= best.Score {
			continue
		}

		longest := max(route1.TravelMinutes, route2.TravelMinutes)
		best = &Result{
			MeetingStation:    station,
			Person1Route:      route1,
			Person2Route:      route2,
			EstimatedMeetTime: opts.PreferredMeetTime.Add(time.Duration(longest) * time.Minute),
			Reasoning:         reasoning(station, route1, route2),
			Score:             score,
		}
	}

	if best == nil {
		o.metrics.OptimizationsTotal.WithLabelValues("no_feasible_route").Inc()
		return nil, ErrNoFeasibleRoute
	}

	o.metrics.OptimizationsTotal.WithLabelValues("ok").Inc()
	o.logger.Debug("meeting point selected",
		"from_a", a.ID,
		"from_b", b.ID,
		"station", best.MeetingStation.ID,
		"score", best.Score,
	)
	return best, nil
}

type candidate struct {
	station models.Station
	score   float64
}

// candidates returns up to ten stations near the midpoint of a and b,
// favoring balanced distances, many lines and Manhattan
func (o *Optimizer) candidates(a, b models.Station) []models.Station {
	midLat := (a.Lat + b.Lat) / 2
	midLng := (a.Lng + b.Lng) / 2

	var scored []candidate
	for _, st := range o.stations {
		if st.ID == a.ID || st.ID == b.ID {
			continue
		}

		distA := distanceKm(a, st)
		distB := distanceKm(b, st)
		farthest := math.Max(distA, distB)
		if farthest > maxCandidateKm {
			continue
		}

		balance := 1.0
		if distA+distB > 0 {
			balance = 1 - math.Abs(distA-distB)/(distA+distB)
		}
		borough := 1.0
		if st.Borough == "Manhattan" {
			borough = 1.2
		}
		fromMid := location.Haversine(midLat, midLng, st.Lat, st.Lng)

		score := (1/(fromMid+1))*30 + balance*40 + float64(len(st.Lines))*5 + borough*10
		score /= math.Max(farthest, minNormalizingKm)

		scored = append(scored, candidate{station: st, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]models.Station, 0, maxCandidates)
	for _, c := range firstN(scored, maxCandidates) {
		out = append(out, c.station)
	}
	return out
}

func scoreMeeting(station models.Station, route1, route2 RouteEstimate, avoidTransfers bool) float64 {
	diff := math.Abs(float64(route1.TravelMinutes - route2.TravelMinutes))
	avg := float64(route1.TravelMinutes+route2.TravelMinutes) / 2
	transfers := float64(route1.Transfers + route2.Transfers)

	timeBalance := math.Max(0, 100-diff*5)
	efficiency := math.Max(0, 100-avg*2)
	perTransfer := 10.0
	if avoidTransfers {
		perTransfer = 20
	}
	connectivity := float64(len(station.Lines)) * 3
	hub := 0.0
	if isTransitHub(station) {
		hub = 15
	}

	return timeBalance + efficiency - transfers*perTransfer + connectivity + hub
}

// isTransitHub matches the named hub list by the part of each name before
// the first dash, or any station with four or more lines
func isTransitHub(station models.Station) bool {
	if len(station.Lines) >= 4 {
		return true
	}
	for _, hub := range majorHubs {
		prefix, _, _ := strings.Cut(hub, "-")
		if strings.Contains(station.Name, prefix) {
			return true
		}
	}
	return false
}
