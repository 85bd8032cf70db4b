package transit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/randytsao24/meetmta/internal/gtfsrt"
	"github.com/randytsao24/meetmta/internal/metrics"
	"github.com/randytsao24/meetmta/internal/models"
)

const (
	// ArrivalHorizon is how far ahead arrivals are reported
	ArrivalHorizon = 30 * time.Minute

	delayedThresholdSec   = 300
	approachingMinutes    = 2
	maxConcurrentFeeds    = 4
	unknownCurrentStation = "unknown"
)

// FeedSource returns raw feed bytes by feed id
type FeedSource interface {
	FetchFeed(ctx context.Context, feedID string) ([]byte, error)
}

// StationLookup resolves station ids
type StationLookup interface {
	Get(id string) (models.Station, error)
}

// ArrivalProjector turns trip updates into upcoming trains at a station
type ArrivalProjector struct {
	stations StationLookup
	feeds    FeedSource
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// ProjectorOptions configures an ArrivalProjector
type ProjectorOptions struct {
	// Rand drives direction fallback and synthetic trains. Nil seeds from the clock.
	Rand    *rand.Rand
	Clock   func() time.Time
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewArrivalProjector creates a projector
func NewArrivalProjector(stations StationLookup, feeds FeedSource, opts ProjectorOptions) *ArrivalProjector {
	p := &ArrivalProjector{
		stations: stations,
		feeds:    feeds,
		now:      opts.Clock,
		rng:      opts.Rand,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.metrics == nil {
		p.metrics = metrics.Discard()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// TrainsAtStation returns trains arriving at stationID within the next 30
// minutes, soonest first. Lines with no usable live data get synthetic
// trains, so the only error is an unknown station.
func (p *ArrivalProjector) TrainsAtStation(ctx context.Context, stationID string) ([]models.Train, error) {
	station, err := p.stations.Get(stationID)
	if err != nil {
		return nil, err
	}

	groups := GroupLinesByFeed(station.Lines)
	decoded := make([]*gtfsrt.FeedMessage, len(groups))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFeeds)
	for i, grp := range groups {
		g.Go(func() error {
			decoded[i] = p.loadFeed(ctx, grp)
			return nil
		})
	}
	_ = g.Wait()

	now := p.now()
	var trains []models.Train
	for i, grp := range groups {
		live := p.project(decoded[i], grp.Lines, station, now)
		trains = append(trains, live...)

		for _, line := range grp.Lines {
			if countLine(live, line) > 0 {
				continue
			}
			p.metrics.FallbacksTotal.WithLabelValues("synthetic_trains").Inc()
			trains = append(trains, p.synthesize(line, station, now)...)
		}
	}

	trains = dedupe(trains)
	sort.SliceStable(trains, func(i, j int) bool {
		return trains[i].EstimatedArrival.Before(trains[j].EstimatedArrival)
	})
	return trains, nil
}

// loadFeed fetches and decodes one feed, returning nil on any failure
func (p *ArrivalProjector) loadFeed(ctx context.Context, grp FeedGroup) *gtfsrt.FeedMessage {
	data, err := p.feeds.FetchFeed(ctx, grp.FeedID)
	if err != nil {
		p.logger.Warn("no live data for lines",
			"feed", grp.FeedID,
			"lines", strings.Join(grp.Lines, ","),
			"error", err,
		)
		return nil
	}

	msg, err := gtfsrt.Decode(data)
	if err != nil {
		var decErr *gtfsrt.DecodeError
		if errors.As(err, &decErr) {
			p.metrics.DecodeErrorsTotal.WithLabelValues(decErr.Stage).Inc()
			p.logger.Warn("feed decode failed",
				"feed", grp.FeedID,
				"stage", decErr.Stage,
				"offset", decErr.Offset,
				"error", decErr.Err,
			)
		}
		return nil
	}
	return msg
}

func (p *ArrivalProjector) project(msg *gtfsrt.FeedMessage, lines []string, station models.Station, now time.Time) []models.Train {
	if msg == nil {
		return nil
	}

	vehicleStops := make(map[string]string)
	for _, v := range msg.Vehicles() {
		if v.Trip != nil && v.Trip.TripID != "" && v.StopID != "" {
			vehicleStops[v.Trip.TripID] = v.StopID
		}
	}

	stopKeys := append(append([]string{}, station.StopIDs...), station.ID)

	var trains []models.Train
	seenTrips := make(map[string]bool)
	for _, tu := range msg.TripUpdates() {
		route := tu.Trip.RouteID
		if route == "" || !contains(lines, route) {
			continue
		}
		tripID := tu.Trip.TripID
		if seenTrips[tripID] {
			continue
		}
		seenTrips[tripID] = true

		stu := matchStop(tu.StopTimeUpdates, stopKeys)
		if stu == nil {
			continue
		}

		arrival, ok := stu.Arrival.At()
		if !ok {
			arrival, ok = stu.Departure.At()
		}
		if !ok {
			continue
		}

		until := arrival.Sub(now)
		if until < 0 || until > ArrivalHorizon {
			continue
		}
		minutes := int(math.Ceil(until.Minutes()))

		current := vehicleStops[tripID]
		if current == "" {
			current = unknownCurrentStation
		}

		trains = append(trains, models.Train{
			ID:               fmt.Sprintf("%s-%s-%s", route, tripID, station.ID),
			Line:             route,
			Direction:        p.direction(tu.Trip),
			CurrentStation:   current,
			NextStation:      station.ID,
			EstimatedArrival: arrival,
			MinutesAway:      minutes,
			Cars:             CarsForLine(route),
			Status:           statusFor(stu.Arrival.DelaySeconds(), minutes),
			Source:           models.SourceLive,
		})
	}
	return trains
}

// matchStop finds the first stop-time update at one of keys, the station's
// GTFS parent stop ids followed by its catalog id. Feed stop ids carry
// direction suffixes ("127N"), so prefix matches in either direction count.
func matchStop(updates []gtfsrt.StopTimeUpdate, keys []string) *gtfsrt.StopTimeUpdate {
	for i := range updates {
		stopID := updates[i].StopID
		if stopID == "" {
			continue
		}
		for _, key := range keys {
			if key == "" {
				continue
			}
			if stopID == key || strings.HasPrefix(stopID, key) || strings.HasPrefix(key, stopID) {
				return &updates[i]
			}
		}
	}
	return nil
}

func statusFor(delaySec int32, minutes int) models.TrainStatus {
	if delaySec > delayedThresholdSec {
		return models.Delayed
	}
	if minutes <= approachingMinutes {
		return models.Approaching
	}
	return models.OnTime
}

// direction reads direction_id (0 is southbound/downtown on NYCT), then
// looks for a direction marker in the trip id. With no signal it picks one
// at random; see DESIGN.md.
func (p *ArrivalProjector) direction(trip gtfsrt.TripDescriptor) models.Direction {
	if trip.DirectionID != nil {
		if *trip.DirectionID == 0 {
			return models.Downtown
		}
		return models.Uptown
	}

	id := trip.TripID
	switch {
	case strings.Contains(id, "..N"):
		return models.Uptown
	case strings.Contains(id, "..S"):
		return models.Downtown
	case strings.Contains(id, "N"):
		return models.Uptown
	case strings.Contains(id, "S"):
		return models.Downtown
	}
	return p.coinFlip()
}

func (p *ArrivalProjector) coinFlip() models.Direction {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng.Float64() > 0.5 {
		return models.Downtown
	}
	return models.Uptown
}

// synthesize makes 1-3 plausible trains for a line with no live data
func (p *ArrivalProjector) synthesize(line string, station models.Station, now time.Time) []models.Train {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.rng.Intn(3) + 1
	trains := make([]models.Train, 0, n)
	for i := 0; i < n; i++ {
		baseMinutes := (i+1)*4 + p.rng.Intn(6)
		delayMinutes := 0
		if p.rng.Float64() < 0.2 {
			delayMinutes = p.rng.Intn(5) + 1
		}
		minutes := baseMinutes + delayMinutes

		status := models.OnTime
		switch {
		case delayMinutes > 0:
			status = models.Delayed
		case minutes <= approachingMinutes:
			status = models.Approaching
		}

		direction := models.Uptown
		if p.rng.Float64() > 0.5 {
			direction = models.Downtown
		}

		id, err := uuid.NewRandomFromReader(p.rng)
		if err != nil {
			id = uuid.Nil
		}

		trains = append(trains, models.Train{
			ID:               fmt.Sprintf("%s-%s-synthetic-%s", line, station.ID, id),
			Line:             line,
			Direction:        direction,
			CurrentStation:   unknownCurrentStation,
			NextStation:      station.ID,
			EstimatedArrival: now.Add(time.Duration(minutes) * time.Minute),
			MinutesAway:      minutes,
			Cars:             CarsForLine(line),
			Status:           status,
			Source:           models.SourceSynthetic,
		})
	}
	return trains
}

func dedupe(trains []models.Train) []models.Train {
	seen := make(map[string]bool, len(trains))
	out := trains[:0]
	for _, t := range trains {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

func countLine(trains []models.Train, line string) int {
	n := 0
	for _, t := range trains {
		if t.Line == line {
			n++
		}
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
