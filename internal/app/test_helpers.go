package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stopfinder.mybus.org/internal/config"
	"stopfinder.mybus.org/internal/models"
)

var edinburghStops = []models.StopRecord{
	{Code: "100001", Name: "Princes Street", Locality: "City Centre", Latitude: 55.9533, Longitude: -3.1883, Orientation: 2, Services: []string{"22", "10"}},
	{Code: "100002", Name: "Waverley Bridge", Locality: "Old Town", Latitude: 55.9540, Longitude: -3.1890, Orientation: 4, Services: []string{"Airlink", "22"}},
	{Code: "100003", Name: "Stockbridge", Locality: "Stockbridge", Latitude: 55.9600, Longitude: -3.2000, Orientation: 7, Services: []string{"10"}},
}

// newTestApplication returns an Application whose index holds edinburghStops.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.NewConfig(
		4000,
		"testing",
		[]models.Feed{*models.NewFeed(1, "Lothian", "https://gtfs.example.com/lothian.zip")},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := New(cfg, logger, &http.Client{}, "test-version")
	app.Index.Replace(edinburghStops)
	return app
}

// newTestServer serves app.Routes until the test ends.
func newTestServer(t *testing.T, app *Application) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(app.Routes(ctx))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, body string) (int, http.Header, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, resp.Header, data
}

func decodeJSON(t *testing.T, data []byte, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", data, err)
	}
}
