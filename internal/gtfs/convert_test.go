package gtfs

import (
	"reflect"
	"sort"
	"testing"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/models"
)

func parseFixture(t *testing.T, files map[string]string) *remoteGtfs.Static {
	t.Helper()
	static, err := remoteGtfs.ParseStatic(buildGTFSZip(t, files), remoteGtfs.ParseStaticOptions{})
	if err != nil {
		t.Fatalf("failed to parse GTFS fixture: %v", err)
	}
	return static
}

func byCode(records []models.StopRecord) map[string]models.StopRecord {
	out := make(map[string]models.StopRecord, len(records))
	for _, r := range records {
		out[r.Code] = r
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestConvertStops(t *testing.T) {
	records, _ := ConvertStops(parseFixture(t, edinburghFeed))
	stops := byCode(records)

	if len(records) != 4 {
		t.Fatalf("expected 4 boarding points, got %d: %+v", len(records), records)
	}
	if _, ok := stops["999999"]; ok {
		t.Error("stop on the (0, 0) placeholder should be dropped")
	}
	if _, ok := stops["STN"]; ok {
		t.Error("parent station should not be indexed")
	}

	tests := []struct {
		code     string
		name     string
		locality string
		services []string
	}{
		{"100001", "Princes Street", "City Centre", []string{"10", "22"}},
		{"100002", "Waverley Bridge", "Waverley Station", []string{"22", "Airlink"}},
		{"100003", "Stockbridge", "Stockbridge", []string{"10"}},
		{"S4", "Leith Walk", "Leith", []string{"Airlink"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			stop, ok := stops[tt.code]
			if !ok {
				t.Fatalf("stop %s missing", tt.code)
			}
			if stop.Name != tt.name {
				t.Errorf("name: expected %q, got %q", tt.name, stop.Name)
			}
			if stop.Locality != tt.locality {
				t.Errorf("locality: expected %q, got %q", tt.locality, stop.Locality)
			}
			if got := sortedCopy(stop.Services); !reflect.DeepEqual(got, tt.services) {
				t.Errorf("services: expected %v, got %v", tt.services, got)
			}
		})
	}

	if got := stops["100001"]; got.Latitude != 55.9533 || got.Longitude != -3.1883 {
		t.Errorf("unexpected coordinates for 100001: %v, %v", got.Latitude, got.Longitude)
	}
}

func TestConvertStopsOrientation(t *testing.T) {
	stops := byCode(mustConvert(t, edinburghFeed))

	// Last call of its only trip, so it faces away from the previous stop.
	if got := stops["100003"].Orientation; got != geo.NorthWest {
		t.Errorf("100003: expected %s, got %s", geo.OrientationName(geo.NorthWest), geo.OrientationName(got))
	}
	// First call of its only trip, so it faces the next stop.
	if got := stops["S4"].Orientation; got != geo.SouthWest {
		t.Errorf("S4: expected %s, got %s", geo.OrientationName(geo.SouthWest), geo.OrientationName(got))
	}
}

func TestConvertStopsWithoutTrips(t *testing.T) {
	files := map[string]string{}
	for name, content := range secondFeed {
		files[name] = content
	}
	files["trips.txt"] = "route_id,service_id,trip_id\n"
	files["stop_times.txt"] = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n"

	stops := byCode(mustConvert(t, files))
	stop, ok := stops["200001"]
	if !ok {
		t.Fatal("stop 200001 missing")
	}
	if len(stop.Services) != 0 {
		t.Errorf("expected no services, got %v", stop.Services)
	}
	if stop.Orientation != geo.North {
		t.Errorf("expected default orientation, got %d", stop.Orientation)
	}
}

func TestConvertStopsNil(t *testing.T) {
	records, skipped := ConvertStops(nil)
	if records != nil || skipped != 0 {
		t.Errorf("expected nothing for nil bundle, got %v, %d", records, skipped)
	}
}

func mustConvert(t *testing.T, files map[string]string) []models.StopRecord {
	t.Helper()
	records, _ := ConvertStops(parseFixture(t, files))
	return records
}
