package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"gopkg.in/yaml.v3"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/report"
)

// ValidateConfigFlags ensures that exactly one configuration source is specified:
// either a config file "--config-file" or a remote config URL "--config-url".
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// refreshConfig periodically fetches the feed list from a remote URL and
// swaps it into cfg. Failures are logged and reported but never stop the loop.
// It returns when ctx is cancelled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, maxRetries int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
			newFeeds, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, maxRetries)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("Failed to refresh remote config", "error", err)
				continue
			}
			cfg.UpdateFeeds(newFeeds)
			logger.Info("Successfully refreshed feed configuration", "feeds", len(newFeeds))
		}
	}
}

// loadConfigFromFile reads the feed list from disk. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON.
func loadConfigFromFile(filePath string) ([]models.Feed, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  report.Tags("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	feeds, err := parseFeeds(data, format)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  report.Tags("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, err
	}
	return feeds, nil
}

// loadConfigFromURL fetches the feed list as JSON from a remote HTTP(S)
// endpoint, with optional basic authentication and retries.
func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  report.Tags("config_url", url),
			Level: sentry.LevelError,
		})
		return nil, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("remote config returned status: %d", resp.StatusCode)
		report.ReportErrorWithSentryOptions(statusErr, report.SentryReportOptions{
			Tags:  report.Tags("config_url", url),
			Level: sentry.LevelError,
		})
		return nil, statusErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote config: %w", err)
	}

	feeds, err := parseFeeds(data, "json")
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  report.Tags("config_url", url),
			Level: sentry.LevelError,
		})
		return nil, err
	}
	return feeds, nil
}

func parseFeeds(data []byte, format string) ([]models.Feed, error) {
	var feeds []models.Feed
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &feeds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &feeds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
	}

	if err := validateFeeds(feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// validateFeeds checks that every feed has a source and a unique ID.
func validateFeeds(feeds []models.Feed) error {
	seen := make(map[int]struct{}, len(feeds))
	for i, feed := range feeds {
		if feed.GtfsURL == "" {
			return fmt.Errorf("feed %d (index %d) has no gtfs_url", feed.ID, i)
		}
		if _, dup := seen[feed.ID]; dup {
			return fmt.Errorf("duplicate feed id %d", feed.ID)
		}
		seen[feed.ID] = struct{}{}
	}
	return nil
}
