package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/randytsao24/meetmta/internal/api/handlers"
)

// Services bundles the data sources the handlers read from
type Services struct {
	Stations handlers.StationProvider
	Trains   handlers.TrainProvider
	Alerts   handlers.AlertProvider
	Meetup   handlers.MeetupProvider
	Metrics  prometheus.Gatherer // nil disables /metrics
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(svc Services, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(svc.Stations)
	rootHandler := handlers.NewRootHandler()
	stationHandler := handlers.NewStationHandler(svc.Stations)
	transitHandler := handlers.NewTransitHandler(svc.Stations, svc.Trains, svc.Alerts)
	meetupHandler := handlers.NewMeetupHandler(svc.Meetup)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Metrics, promhttp.HandlerOpts{}))
	}

	// Station catalog
	mux.HandleFunc("GET /stations", stationHandler.ListStations)
	mux.HandleFunc("GET /stations/boroughs", stationHandler.GetBoroughs)
	mux.HandleFunc("GET /stations/near", stationHandler.GetStationsNear)
	mux.HandleFunc("GET /stations/{id}", stationHandler.GetStation)

	// Live data
	mux.HandleFunc("GET /stations/{id}/trains", transitHandler.GetStationTrains)
	mux.HandleFunc("GET /trains", transitHandler.GetTrainsForStations)
	mux.HandleFunc("GET /alerts", transitHandler.GetServiceAlerts)

	// Meetup planning
	mux.HandleFunc("POST /meetup", meetupHandler.FindMeetingPoint)

	mux.HandleFunc("/", rootHandler.NotFound)

	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}

	// Apply middleware stack
	handler := Chain(mux,
		RequestIDs,
		Recovery(svc.Logger),
		Logging(svc.Logger),
		CORS,
		Timeout(requestTimeout),
	)

	return handler
}
