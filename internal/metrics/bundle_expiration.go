package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/jamespfennell/gtfs"
)

var ErrNoServices = errors.New("no services found in GTFS bundle")

// RecordBundleExpiration sets the expiration gauges of a feed from the end
// dates of its service calendars and returns the days left until the first
// and the last of them end. Negative values mean the calendar already ended.
//
// feed_info.txt is not exposed by the parser, so calendars are the only
// source of validity dates.
func RecordBundleExpiration(feedID int, staticData *gtfs.Static, now time.Time) (int, int, error) {
	if staticData == nil || len(staticData.Services) == 0 {
		return 0, 0, ErrNoServices
	}

	earliestEndDate := staticData.Services[0].EndDate
	latestEndDate := staticData.Services[0].EndDate
	for _, service := range staticData.Services {
		if service.EndDate.Before(earliestEndDate) {
			earliestEndDate = service.EndDate
		}
		if service.EndDate.After(latestEndDate) {
			latestEndDate = service.EndDate
		}
	}

	earliest := int(earliestEndDate.Sub(now).Hours() / 24)
	latest := int(latestEndDate.Sub(now).Hours() / 24)

	id := strconv.Itoa(feedID)
	BundleEarliestExpirationGauge.WithLabelValues(id).Set(float64(earliest))
	BundleLatestExpirationGauge.WithLabelValues(id).Set(float64(latest))
	return earliest, latest, nil
}
