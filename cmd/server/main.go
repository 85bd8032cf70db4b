// Package main is the entry point for the meetmta server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/randytsao24/meetmta/internal/api"
	"github.com/randytsao24/meetmta/internal/config"
	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/meetup"
	"github.com/randytsao24/meetmta/internal/metrics"
	"github.com/randytsao24/meetmta/internal/transit"
)

func main() {
	configPath := flag.String("config", "", "optional TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	catalog, err := location.NewCatalog()
	if err != nil {
		return err
	}
	logger.Info("station catalog loaded", "stations", catalog.Count())

	fetcher := transit.NewHTTPFetcher(transit.HTTPFetcherOptions{
		BaseURL: cfg.FeedBaseURL,
		APIKey:  cfg.MTAAPIKey,
		Timeout: cfg.HTTPTimeout,
		Retries: cfg.FetchRetries,
		Metrics: m,
		Logger:  logger,
	})

	gateway := transit.NewFeedGateway(fetcher, transit.GatewayOptions{
		TTL:     cfg.FeedCacheTTL,
		Timeout: cfg.HTTPTimeout,
		Metrics: m,
		Logger:  logger,
	})
	defer gateway.Close()

	alerts := transit.NewAlertProjector(fetcher, transit.AlertOptions{
		TTL:     cfg.AlertsTTL,
		Timeout: cfg.HTTPTimeout,
		Metrics: m,
		Logger:  logger,
	})
	defer alerts.Close()

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	arrivals := transit.NewArrivalProjector(catalog, gateway, transit.ProjectorOptions{
		Rand:    rand.New(rand.NewSource(seed)),
		Metrics: m,
		Logger:  logger,
	})

	router := api.NewRouter(api.Services{
		Stations: catalog,
		Trains:   arrivals,
		Alerts:   alerts,
		Meetup:   meetup.NewOptimizer(catalog, m, logger),
		Metrics:  registry,
		Logger:   logger,
	}, 15*time.Second)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("meetmta server starting",
			"port", cfg.Port,
			"env", cfg.Env,
			"url", "http://localhost:"+cfg.Port,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
