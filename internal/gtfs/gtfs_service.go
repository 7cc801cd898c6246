package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"
	"stopfinder.mybus.org/internal/config"
	"stopfinder.mybus.org/internal/metrics"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/stops"
)

const maxConcurrentFeeds = 4

// StopService loads the stops of every configured feed into the index.
type StopService struct {
	Index      *stops.Index
	FeedStore  *FeedStore
	Backoff    *config.BackoffStore
	Logger     *slog.Logger
	Client     *http.Client
	MaxRetries int
}

func NewStopService(index *stops.Index, logger *slog.Logger, client *http.Client, maxRetries int) *StopService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &StopService{
		Index:      index,
		FeedStore:  NewFeedStore(),
		Backoff:    config.NewBackoffStore(),
		Logger:     logger,
		Client:     client,
		MaxRetries: maxRetries,
	}
}

type feedResult struct {
	order   int
	feed    models.Feed
	records []models.StopRecord
	err     error
}

// LoadAll fetches every feed concurrently, merges their stops and swaps them
// into the index. Feeds are merged in configuration order, so on a duplicate
// stop code the earlier feed wins.
//
// A feed that fails, or is still backing off from an earlier failure,
// contributes the stops of its last successful load. The index is left
// untouched and an error returned when no feed yields any stop.
func (ss *StopService) LoadAll(ctx context.Context, feeds []models.Feed) (stops.BuildStats, error) {
	p := pool.NewWithResults[feedResult]().WithMaxGoroutines(maxConcurrentFeeds)
	for i, feed := range feeds {
		p.Go(func() feedResult {
			return ss.loadFeed(ctx, i, feed)
		})
	}
	results := p.Wait()
	sort.Slice(results, func(a, b int) bool { return results[a].order < results[b].order })

	ids := make(map[int]struct{}, len(feeds))
	var merged []models.StopRecord
	failed := 0
	for _, r := range results {
		ids[r.feed.ID] = struct{}{}
		if r.err != nil {
			failed++
		}
		merged = append(merged, r.records...)
	}
	ss.FeedStore.Retain(ids)

	if len(merged) == 0 {
		return stops.BuildStats{}, fmt.Errorf("no stops loaded from %d feeds (%d failed)", len(feeds), failed)
	}

	stats := ss.Index.Replace(merged)
	metrics.IndexedStops.Set(float64(stats.Accepted))
	metrics.RejectedStops.WithLabelValues("duplicate").Set(float64(stats.Duplicates))
	metrics.RejectedStops.WithLabelValues("invalid").Set(float64(stats.Invalid))
	metrics.IndexLastBuild.SetToCurrentTime()

	ss.Logger.Info("Stop index rebuilt",
		"feeds", len(feeds),
		"failed_feeds", failed,
		"accepted", stats.Accepted,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
	)

	ss.pingUpstreams(ctx, feeds)
	return stats, nil
}

func (ss *StopService) loadFeed(ctx context.Context, order int, feed models.Feed) feedResult {
	result := feedResult{order: order, feed: feed}
	feedID := strconv.Itoa(feed.ID)

	if ss.Backoff.ShouldSkip(feed.ID, time.Now()) {
		next, _ := ss.Backoff.NextRetryAt(feed.ID)
		ss.Logger.Warn("Skipping feed in backoff", "feed_id", feed.ID, "next_retry_at", next)
		result.records, _ = ss.FeedStore.Get(feed.ID)
		return result
	}

	static, err := fetchGTFSBundle(ctx, ss.Client, feed, ss.MaxRetries)
	if err != nil {
		ss.Backoff.UpdateBackoff(feed.ID)
		metrics.FeedLoadFailures.WithLabelValues(feedID).Inc()
		ss.Logger.Error("Failed to load GTFS bundle", "feed_id", feed.ID, "error", err)
		result.err = err
		result.records, _ = ss.FeedStore.Get(feed.ID)
		return result
	}
	ss.Backoff.ResetBackoff(feed.ID)

	earliest, _, err := metrics.RecordBundleExpiration(feed.ID, static, time.Now())
	switch {
	case err != nil:
		ss.Logger.Warn("Could not determine bundle expiration", "feed_id", feed.ID, "error", err)
	case earliest < 0:
		ss.Logger.Warn("GTFS bundle has expired service calendars", "feed_id", feed.ID, "days", earliest)
	}

	records, skipped := ConvertStops(static)
	ss.FeedStore.Set(feed.ID, records)
	metrics.FeedStops.WithLabelValues(feedID).Set(float64(len(records)))
	ss.Logger.Info("Loaded GTFS bundle", "feed_id", feed.ID, "name", feed.Name, "stops", len(records), "skipped", skipped)

	result.records = records
	return result
}

func (ss *StopService) pingUpstreams(ctx context.Context, feeds []models.Feed) {
	p := pool.New().WithMaxGoroutines(maxConcurrentFeeds)
	for _, feed := range feeds {
		if feed.OBABaseURL == "" {
			continue
		}
		p.Go(func() {
			if !metrics.PingUpstream(ctx, feed) {
				ss.Logger.Warn("Upstream server did not answer", "feed_id", feed.ID, "oba_base_url", feed.OBABaseURL)
			}
		})
	}
	p.Wait()
}

// RefreshStops reloads all feeds every interval until ctx is cancelled.
// feeds is called on every tick so configuration refreshes are picked up.
func (ss *StopService) RefreshStops(ctx context.Context, feeds func() []models.Feed, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ss.Logger.Info("Stopping stop refresh routine")
			return
		case <-ticker.C:
			ss.Logger.Info("Refreshing stops")
			if _, err := ss.LoadAll(ctx, feeds()); err != nil {
				ss.Logger.Error("Stop refresh failed, keeping previous index", "error", err)
			}
		}
	}
}
