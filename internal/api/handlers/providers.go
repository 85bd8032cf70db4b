package handlers

import (
	"context"

	"github.com/randytsao24/meetmta/internal/meetup"
	"github.com/randytsao24/meetmta/internal/models"
)

// StationProvider abstracts the station catalog for testability.
type StationProvider interface {
	Get(id string) (models.Station, error)
	Count() int
	Search(query string) []models.Station
	ByBorough(borough string) []models.Station
	ByLine(line string) []models.Station
	Boroughs() []string
	Nearby(lat, lng, radiusKm float64) []models.StationWithDistance
	Closest(lat, lng float64, limit int) []models.StationWithDistance
}

// TrainProvider abstracts the arrival projector.
type TrainProvider interface {
	TrainsAtStation(ctx context.Context, stationID string) ([]models.Train, error)
}

// AlertProvider abstracts the service alerts data source.
type AlertProvider interface {
	ServiceAlerts(ctx context.Context) []models.ServiceAlert
	AlertsForLines(ctx context.Context, lines []string) []models.ServiceAlert
}

// MeetupProvider abstracts the meeting point optimizer.
type MeetupProvider interface {
	FindMeetingPoint(stationA, stationB string, opts meetup.Options) (*meetup.Result, error)
}
