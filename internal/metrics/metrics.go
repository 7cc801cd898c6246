package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndexedStops = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stopfinder_indexed_stops",
		Help: "Number of stops currently held in the spatial index",
	})

	RejectedStops = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stopfinder_rejected_stops",
		Help: "Number of stop records dropped by the last index build",
	}, []string{"reason"})

	IndexLastBuild = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stopfinder_index_last_build_timestamp_seconds",
		Help: "Unix time of the last successful index build",
	})
)

var (
	FeedStops = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stopfinder_feed_stops",
		Help: "Number of stops converted from the feed on the last load",
	}, []string{"feed_id"})

	FeedLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stopfinder_feed_load_failures_total",
		Help: "Number of failed feed downloads or parses",
	}, []string{"feed_id"})

	BundleEarliestExpirationGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stopfinder_feed_earliest_expiration_days",
		Help: "Days until the first service calendar of the feed ends",
	}, []string{"feed_id"})

	BundleLatestExpirationGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stopfinder_feed_latest_expiration_days",
		Help: "Days until the last service calendar of the feed ends",
	}, []string{"feed_id"})

	UpstreamStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stopfinder_upstream_status",
		Help: "Status of the OneBusAway server behind a feed (0 = not working, 1 = working)",
	}, []string{"feed_id", "oba_base_url"})
)

var (
	NearestQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stopfinder_nearest_query_duration_seconds",
		Help:    "Time spent answering nearest-stop queries",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	NearestQueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stopfinder_nearest_query_results",
		Help:    "Number of stops returned per nearest-stop query",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	SupersededQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopfinder_superseded_queries_total",
		Help: "Number of query results discarded because a newer query was issued",
	})
)

var (
	ProximityAlertsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopfinder_proximity_alerts_triggered_total",
		Help: "Number of proximity alerts found in range by alert checks",
	})
)

var (
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stopfinder_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)
