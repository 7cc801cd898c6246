package app

import (
	"log/slog"
	"net/http"

	"stopfinder.mybus.org/internal/alerts"
	"stopfinder.mybus.org/internal/config"
	"stopfinder.mybus.org/internal/gtfs"
	"stopfinder.mybus.org/internal/nearby"
	"stopfinder.mybus.org/internal/stops"
)

// Application wires the stop index and the services around it.
type Application struct {
	Config        *config.Config
	ConfigService *config.ConfigService
	StopService   *gtfs.StopService
	Index         *stops.Index
	Finder        *nearby.Finder
	Alerts        *alerts.Store
	Logger        *slog.Logger
	Version       string
}

// New creates and wires all dependencies for the Application.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string) *Application {
	index := stops.NewIndex()

	return &Application{
		Config:        cfg,
		ConfigService: config.NewConfigService(logger, client, cfg),
		StopService:   gtfs.NewStopService(index, logger, client, cfg.MaxRetries),
		Index:         index,
		Finder:        nearby.NewFinder(index, nearby.WithSpans(cfg.LatSpan, cfg.LonSpan)),
		Alerts:        alerts.NewStore(index),
		Logger:        logger,
		Version:       version,
	}
}
