package config

import (
	"sync"
	"time"

	"stopfinder.mybus.org/internal/models"
)

const (
	DefaultLatSpan         = 0.004499
	DefaultLonSpan         = 0.008001
	DefaultRefreshInterval = 24 * time.Hour
	DefaultMaxRetries      = 3
)

// Config holds all the configuration settings for our application.
type Config struct {
	Port            int
	Env             string
	LatSpan         float64
	LonSpan         float64
	RefreshInterval time.Duration
	MaxRetries      int
	Mu              sync.RWMutex
	Feeds           []models.Feed
}

// NewConfig creates a new Config with default search spans and refresh interval.
func NewConfig(port int, env string, feeds []models.Feed) *Config {
	return &Config{
		Port:            port,
		Env:             env,
		LatSpan:         DefaultLatSpan,
		LonSpan:         DefaultLonSpan,
		RefreshInterval: DefaultRefreshInterval,
		MaxRetries:      DefaultMaxRetries,
		Feeds:           feeds,
	}
}

// UpdateFeeds safely replaces the configured feeds.
func (cfg *Config) UpdateFeeds(newFeeds []models.Feed) {
	cfg.Mu.Lock()
	defer cfg.Mu.Unlock()
	cfg.Feeds = newFeeds
}

// GetFeeds returns a copy of the configured feeds, safe to use while the
// configuration is being refreshed.
func (cfg *Config) GetFeeds() []models.Feed {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	return append([]models.Feed(nil), cfg.Feeds...)
}
