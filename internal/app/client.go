package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"stopfinder.mybus.org/internal/metrics"
)

// latencyTrackingRoundTripper records the duration of every outgoing request
// in metrics.OutgoingLatency, labelled by URL (without query), method and status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	// query strings may carry API keys
	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(safeURL, req.Method, status).Observe(duration)
	return resp, err
}

// NewPooledClient returns the instrumented HTTP client used for GTFS
// downloads and remote configuration.
//
// GTFS bundles can be tens of megabytes, so the overall timeout is generous
// while dialing and TLS fail fast on unreachable hosts.
func NewPooledClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   2 * time.Minute,
	}
}
