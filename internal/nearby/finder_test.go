package nearby

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/stops"
)

func newTestIndex(t *testing.T, records []models.StopRecord) *stops.Index {
	t.Helper()
	idx := stops.NewIndex()
	stats := idx.Replace(records)
	if stats.Accepted != len(records) {
		t.Fatalf("expected all %d records indexed, got %+v", len(records), stats)
	}
	return idx
}

func edinburghStops() []models.StopRecord {
	return []models.StopRecord{
		{Code: "100001", Name: "Princes Street", Latitude: 55.9500, Longitude: -3.2000, Orientation: geo.East, Services: []string{"22", "10", "X12"}},
		{Code: "100002", Name: "Hanover Street", Locality: "New Town", Latitude: 55.9510, Longitude: -3.2010, Services: []string{"23", "27"}},
		{Code: "100003", Name: "Leith Walk", Latitude: 55.9700, Longitude: -3.1500, Services: []string{"22"}},
	}
}

func resultCodes(results []models.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.StopCode)
	}
	return out
}

func TestFindNearestStopsScenario(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()))

	results, err := finder.FindNearestStops(context.Background(), 55.9500, -3.2000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fmt.Sprint(resultCodes(results)); got != "[100001 100002]" {
		t.Fatalf("expected [100001 100002], got %s", got)
	}
	if results[0].DistanceMeters != 0 {
		t.Errorf("expected 100001 at distance 0, got %v", results[0].DistanceMeters)
	}
	if results[0].DistanceDisplay != "0 m" {
		t.Errorf("expected display \"0 m\", got %q", results[0].DistanceDisplay)
	}
	if results[0].ServicesDisplay != "10, 22, X12" {
		t.Errorf("unexpected services display %q", results[0].ServicesDisplay)
	}
	if results[0].Orientation != geo.East {
		t.Errorf("expected orientation to be copied, got %d", results[0].Orientation)
	}
	if results[1].Locality != "New Town" {
		t.Errorf("expected locality to be copied, got %q", results[1].Locality)
	}
}

func TestFindNearestStopsServiceFilter(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()))

	results, err := finder.FindNearestStops(context.Background(), 55.9500, -3.2000, []string{"10", "22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fmt.Sprint(resultCodes(results)); got != "[100001]" {
		t.Errorf("expected [100001], got %s", got)
	}
}

func TestFindNearestStopsEmpty(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()))

	results, err := finder.FindNearestStops(context.Background(), 51.5074, -0.1278, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", results)
	}
}

func TestFindNearestStopsInvalidCoordinates(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()))

	for _, c := range [][2]float64{{91, 0}, {0, 181}, {-90.5, -3}} {
		_, err := finder.FindNearestStops(context.Background(), c[0], c[1], nil)
		if !errors.Is(err, geo.ErrInvalidCoordinates) {
			t.Errorf("expected ErrInvalidCoordinates for %v, got %v", c, err)
		}
	}
}

func TestFindNearestStopsCancelled(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := finder.FindNearestStops(ctx, 55.95, -3.2, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFindNearestStopsWithSpans(t *testing.T) {
	finder := NewFinder(newTestIndex(t, edinburghStops()), WithSpans(0.05, 0.1))

	latSpan, lonSpan := finder.Spans()
	if latSpan != 0.05 || lonSpan != 0.1 {
		t.Fatalf("spans not applied: %v, %v", latSpan, lonSpan)
	}

	results, err := finder.FindNearestStops(context.Background(), 55.9500, -3.2000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fmt.Sprint(resultCodes(results)); got != "[100001 100002 100003]" {
		t.Errorf("expected all three stops nearest first, got %s", got)
	}

	defaults := NewFinder(nil, WithSpans(0, -1))
	latSpan, lonSpan = defaults.Spans()
	if latSpan != DefaultLatSpan || lonSpan != DefaultLonSpan {
		t.Errorf("non-positive spans should keep defaults, got %v, %v", latSpan, lonSpan)
	}
}

func TestFindNearestStopsOrderingAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	var records []models.StopRecord
	for i := 0; i < 500; i++ {
		records = append(records, models.StopRecord{
			Code:      fmt.Sprintf("%06d", i),
			Latitude:  55.94 + rng.Float64()*0.02,
			Longitude: -3.21 + rng.Float64()*0.02,
			Services:  []string{fmt.Sprint(i % 30)},
		})
	}
	// Two stops at the same spot keep index order.
	records = append(records,
		models.StopRecord{Code: "tie-a", Latitude: 55.9501, Longitude: -3.2001},
		models.StopRecord{Code: "tie-b", Latitude: 55.9501, Longitude: -3.2001},
	)
	finder := NewFinder(newTestIndex(t, records))

	first, err := finder.FindNearestStops(context.Background(), 55.95, -3.2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected some results")
	}
	for i := 0; i+1 < len(first); i++ {
		if first[i].DistanceMeters > first[i+1].DistanceMeters {
			t.Fatalf("results out of order at %d: %v > %v", i, first[i].DistanceMeters, first[i+1].DistanceMeters)
		}
	}

	tieA, tieB := -1, -1
	for i, r := range first {
		switch r.StopCode {
		case "tie-a":
			tieA = i
		case "tie-b":
			tieB = i
		}
	}
	if tieA < 0 || tieB < 0 || tieA > tieB {
		t.Errorf("equal-distance stops should keep index order, got positions %d and %d", tieA, tieB)
	}

	second, err := finder.FindNearestStops(context.Background(), 55.95, -3.2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(resultCodes(first)) != fmt.Sprint(resultCodes(second)) {
		t.Error("repeated query returned a different list")
	}
}

func TestSortServices(t *testing.T) {
	got := SortServices([]string{"N22", "10A", "2", "10", "X12", "", "2", "100"})
	expected := "[2 10 10A 100 N22 X12]"
	if fmt.Sprint(got) != expected {
		t.Errorf("expected %s, got %v", expected, got)
	}
}
