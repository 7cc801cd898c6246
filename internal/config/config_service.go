package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stopfinder.mybus.org/internal/models"
)

// ConfigService holds dependencies and provides config operations.
type ConfigService struct {
	Logger *slog.Logger
	Client *http.Client
	Config *Config
}

// NewConfigService creates a new ConfigService instance with the provided logger and HTTP client.
func NewConfigService(logger *slog.Logger, client *http.Client, config *Config) *ConfigService {
	return &ConfigService{
		Logger: logger,
		Client: client,
		Config: config,
	}
}

// RefreshConfig polls url for a new feed list every interval until ctx is cancelled.
func (cs *ConfigService) RefreshConfig(ctx context.Context, url, authUser, authPass string, interval time.Duration) {
	refreshConfig(ctx, cs.Client, url, authUser, authPass, cs.Config, cs.Logger, interval, cs.Config.MaxRetries)
}

// LoadConfigFromFile loads the feed list from a JSON or YAML file.
func LoadConfigFromFile(filePath string) ([]models.Feed, error) {
	feeds, err := loadConfigFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", filePath, err)
	}
	return feeds, nil
}

// LoadConfigFromURL loads the feed list from a remote JSON document.
func LoadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.Feed, error) {
	feeds, err := loadConfigFromURL(ctx, client, url, authUser, authPass, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from URL %s: %w", url, err)
	}
	return feeds, nil
}
