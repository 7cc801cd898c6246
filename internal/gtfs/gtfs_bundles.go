package gtfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"stopfinder.mybus.org/internal/config"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/report"
)

// fetchGTFSBundle loads and parses the GTFS static bundle of a feed.
//
// An http(s) gtfs_url is downloaded with retries; anything else is read as a
// local path. Failures are reported to Sentry tagged with the feed ID.
func fetchGTFSBundle(ctx context.Context, client *http.Client, feed models.Feed, maxRetries int) (*remoteGtfs.Static, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(feed.GtfsURL) {
		data, err = downloadGTFSBundle(ctx, client, feed.GtfsURL, maxRetries)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(feed.GtfsURL, "file://"))
		if err != nil {
			err = fmt.Errorf("failed to read GTFS bundle %s: %w", feed.GtfsURL, err)
		}
	}
	if err != nil {
		report.ReportFeedError(err, feed.ID, "gtfs_url", feed.GtfsURL)
		return nil, err
	}

	staticBundle, err := remoteGtfs.ParseStatic(data, remoteGtfs.ParseStaticOptions{})
	if err != nil {
		err = fmt.Errorf("failed to parse GTFS static data from %s: %w", feed.GtfsURL, err)
		report.ReportFeedError(err, feed.ID, "gtfs_url", feed.GtfsURL)
		return nil, err
	}
	return staticBundle, nil
}

func downloadGTFSBundle(ctx context.Context, client *http.Client, url string, maxRetries int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d when downloading GTFS bundle from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS bundle response body from %s: %w", url, err)
	}
	return data, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
