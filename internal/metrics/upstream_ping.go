package metrics

import (
	"context"
	"fmt"
	"strconv"

	onebusaway "github.com/OneBusAway/go-sdk"
	"github.com/OneBusAway/go-sdk/option"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/report"
)

// PingUpstream asks the OneBusAway server behind a feed for its current time
// and records whether it answered. Feeds without an OBA base URL are skipped
// and reported as false.
func PingUpstream(ctx context.Context, feed models.Feed) bool {
	if feed.OBABaseURL == "" {
		return false
	}

	client := onebusaway.NewClient(
		option.WithAPIKey(feed.OBAApiKey),
		option.WithBaseURL(feed.OBABaseURL),
	)

	status := UpstreamStatus.WithLabelValues(strconv.Itoa(feed.ID), feed.OBABaseURL)

	response, err := client.CurrentTime.Get(ctx)
	if err != nil {
		err := fmt.Errorf("failed to ping OBA server %s: %w", feed.OBABaseURL, err)
		report.ReportFeedError(err, feed.ID, "oba_base_url", feed.OBABaseURL)
		status.Set(0)
		return false
	}

	if response.Data.Entry.ReadableTime == "" {
		status.Set(0)
		return false
	}
	status.Set(1)
	return true
}
