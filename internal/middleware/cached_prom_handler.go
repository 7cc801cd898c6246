package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a Prometheus text exposition that is rebuilt at
// most once per ttl, so concurrent scrapes do not each gather every metric.
type CachedPromHandler struct {
	mu       sync.RWMutex
	cache    []byte
	ttl      time.Duration
	gatherer prometheus.Gatherer
	live     http.Handler
}

// NewCachedPromHandler starts a goroutine that refreshes the cache every ttl
// until ctx is cancelled.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl:      ttl,
		gatherer: gatherer,
		live:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh()
		}
	}
}

// Refresh gathers all metrics and replaces the cached exposition.
// The previous cache is kept when gathering fails.
func (c *CachedPromHandler) Refresh() error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.cache = buf.Bytes()
	c.mu.Unlock()
	return nil
}

// ServeHTTP serves the cached exposition, or gathers live until the first
// refresh has happened.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	cache := c.cache
	c.mu.RUnlock()

	if len(cache) == 0 {
		c.live.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(cache)
}
