package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stopfinder.mybus.org/internal/models"
)

func TestHealthcheckHandler(t *testing.T) {
	app := newTestApplication(t)

	rr := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	if err != nil {
		t.Fatal(err)
	}

	app.healthcheckHandler(rr, request)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "available" {
		t.Errorf("expected status 'available', got %q", resp.Status)
	}
	if resp.Environment != "testing" {
		t.Errorf("expected environment 'testing', got %q", resp.Environment)
	}
	if resp.Version != "test-version" {
		t.Errorf("expected version 'test-version', got %q", resp.Version)
	}
	if resp.Feeds != 1 {
		t.Errorf("expected feeds 1, got %d", resp.Feeds)
	}
	if resp.Stops != len(edinburghStops) {
		t.Errorf("expected %d stops, got %d", len(edinburghStops), resp.Stops)
	}
	if resp.LastUpdated == nil {
		t.Error("expected last_updated to be set")
	}
	if !resp.Ready {
		t.Errorf("expected ready true, got false")
	}
}

func TestHealthcheckHandlerNotReady(t *testing.T) {
	app := newTestApplication(t)
	app.Index.Replace([]models.StopRecord{})

	rr := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	app.healthcheckHandler(rr, request)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for an empty index, got %d", rr.Code)
	}

	var resp HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Ready || resp.Stops != 0 {
		t.Errorf("expected not ready with 0 stops, got %+v", resp)
	}
}
