package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"stopfinder.mybus.org/internal/app"
	"stopfinder.mybus.org/internal/config"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/report"
)

const version = "1.0.0"

func main() {
	var (
		port                  = flag.Int("port", 4000, "API server port")
		env                   = flag.String("env", "development", "Environment (development|staging|production)")
		configFile            = flag.String("config-file", "", "Path to a local JSON or YAML feed configuration file")
		configURL             = flag.String("config-url", "", "URL to a remote JSON feed configuration")
		latSpan               = flag.Float64("lat-span", config.DefaultLatSpan, "Half height of the nearest-stop search window in degrees")
		lonSpan               = flag.Float64("lon-span", config.DefaultLonSpan, "Half width of the nearest-stop search window in degrees")
		refreshInterval       = flag.Duration("refresh-interval", config.DefaultRefreshInterval, "How often GTFS feeds are reloaded")
		configRefreshInterval = flag.Duration("config-refresh-interval", time.Minute, "How often a remote configuration is refetched")
		maxRetries            = flag.Int("max-retries", config.DefaultMaxRetries, "Retries for failed downloads")
	)
	flag.Parse()

	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := report.SetupSentry(os.Getenv("SENTRY_DSN"), *env, version); err != nil {
		logger.Error("Failed to initialise Sentry", "error", err)
	}
	defer report.FlushSentry()
	report.ConfigureScope(*env, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient()

	feeds, err := loadFeeds(ctx, client, *configFile, *configURL, configAuthUser, configAuthPass, *maxRetries)
	if err != nil {
		logger.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}
	if len(feeds) == 0 {
		logger.Error("No feeds found in configuration")
		os.Exit(1)
	}

	cfg := config.NewConfig(*port, *env, feeds)
	cfg.LatSpan = *latSpan
	cfg.LonSpan = *lonSpan
	cfg.RefreshInterval = *refreshInterval
	cfg.MaxRetries = *maxRetries

	application := app.New(cfg, logger, client, version)

	// A failed first load is not fatal: the refresh loop keeps trying and
	// the healthcheck reports not ready meanwhile.
	if _, err := application.StopService.LoadAll(ctx, cfg.GetFeeds()); err != nil {
		logger.Error("Initial stop load failed", "error", err)
	}

	go application.StopService.RefreshStops(ctx, cfg.GetFeeds, cfg.RefreshInterval)

	if *configURL != "" {
		go application.ConfigService.RefreshConfig(ctx, *configURL, configAuthUser, configAuthPass, *configRefreshInterval)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "feeds", len(feeds))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			report.ReportError(err, sentry.LevelFatal)
			report.FlushSentry()
			logger.Error(err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}
	logger.Info("server stopped")
}

func loadFeeds(ctx context.Context, client *http.Client, configFile, configURL, authUser, authPass string, maxRetries int) ([]models.Feed, error) {
	if configFile != "" {
		return config.LoadConfigFromFile(configFile)
	}
	return config.LoadConfigFromURL(ctx, client, configURL, authUser, authPass, maxRetries)
}
