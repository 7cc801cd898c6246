package app

import (
	"net/http"
	"strings"
	"testing"
)

func TestRoutes(t *testing.T) {
	ts := newTestServer(t, newTestApplication(t))

	t.Run("security headers", func(t *testing.T) {
		_, header, _ := doRequest(t, ts, http.MethodGet, "/v1/healthcheck", "")
		if got := header.Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("expected nosniff, got %q", got)
		}
		if got := header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		status, _, body := doRequest(t, ts, http.MethodGet, "/v1/nowhere", "")
		if status != http.StatusNotFound || !strings.Contains(string(body), "could not be found") {
			t.Errorf("expected JSON 404, got %d: %s", status, body)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		status, _, _ := doRequest(t, ts, http.MethodPut, "/v1/stops/nearest", "")
		if status != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", status)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		// make sure at least one query histogram has samples
		doRequest(t, ts, http.MethodGet, "/v1/stops/nearest?lat=55.9533&lon=-3.1883", "")

		status, _, body := doRequest(t, ts, http.MethodGet, "/metrics", "")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !strings.Contains(string(body), "stopfinder_nearest_query_duration_seconds") {
			t.Error("expected query duration metric in exposition")
		}
	})
}
