package metrics

import (
	"context"
	"net/http"
	"testing"

	"stopfinder.mybus.org/internal/models"
)

func TestPingUpstream(t *testing.T) {
	t.Run("No upstream configured", func(t *testing.T) {
		feed := models.NewFeed(7, "Local", "testdata/gtfs.zip")
		if PingUpstream(context.Background(), *feed) {
			t.Error("expected false for a feed without an OBA base URL")
		}
	})

	t.Run("Upstream answers", func(t *testing.T) {
		ts := setupObaServer(t, `{
			"code": 200,
			"currentTime": 1760659200000,
			"text": "OK",
			"version": 2,
			"data": {
				"entry": {"readableTime": "2025-10-17T00:00:00Z", "time": 1760659200000},
				"references": {"agencies": [], "routes": [], "situations": [], "stopTimes": [], "stops": [], "trips": []}
			}
		}`, http.StatusOK)

		feed := models.Feed{ID: 8, Name: "Upstream", OBABaseURL: ts.URL, OBAApiKey: "test-key"}
		if !PingUpstream(context.Background(), feed) {
			t.Fatal("expected upstream to be reported as working")
		}

		value, err := getMetricValue(UpstreamStatus, map[string]string{"feed_id": "8", "oba_base_url": ts.URL})
		if err != nil {
			t.Fatalf("failed to read metric: %v", err)
		}
		if value != 1 {
			t.Errorf("expected upstream status 1, got %v", value)
		}
	})

	t.Run("Upstream answers without a time", func(t *testing.T) {
		ts := setupObaServer(t, `{"code": 200, "currentTime": 0, "text": "OK", "version": 2, "data": {"entry": {"readableTime": "", "time": 0}}}`, http.StatusOK)

		feed := models.Feed{ID: 9, Name: "Upstream", OBABaseURL: ts.URL, OBAApiKey: "test-key"}
		if PingUpstream(context.Background(), feed) {
			t.Fatal("expected upstream to be reported as not working")
		}

		value, err := getMetricValue(UpstreamStatus, map[string]string{"feed_id": "9", "oba_base_url": ts.URL})
		if err != nil {
			t.Fatalf("failed to read metric: %v", err)
		}
		if value != 0 {
			t.Errorf("expected upstream status 0, got %v", value)
		}
	})
}
