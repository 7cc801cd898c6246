package gtfs

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// edinburghFeed is a small bundle around Princes Street.
//
// 100001 and 100002 are a few dozen meters apart, 100003 is about a
// kilometer away, S4 has no stop_code and BAD sits on the (0, 0) placeholder.
var edinburghFeed = map[string]string{
	"agency.txt": `agency_id,agency_name,agency_url,agency_timezone
LB,Lothian Buses,https://www.lothianbuses.com,Europe/London
`,
	"stops.txt": `stop_id,stop_code,stop_name,stop_desc,stop_lat,stop_lon,location_type,parent_station
STN,,Waverley Station,,55.9520,-3.1890,1,
S1,100001,Princes Street,City Centre,55.9533,-3.1883,0,
S2,100002,Waverley Bridge,,55.9540,-3.1890,0,STN
S3,100003,Stockbridge,Stockbridge,55.9600,-3.2000,0,
S4,,Leith Walk,Leith,55.9650,-3.1780,0,
BAD,999999,Nowhere,,0,0,0,
`,
	"routes.txt": `route_id,agency_id,route_short_name,route_long_name,route_type
R10,LB,10,,3
R22,LB,22,,3
RAIR,LB,,Airlink,3
`,
	"calendar.txt": `service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
WK,1,1,1,1,1,1,1,20250101,20271231
`,
	"trips.txt": `route_id,service_id,trip_id
R10,WK,T1
R22,WK,T2
RAIR,WK,T3
`,
	"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,S1,1
T1,08:05:00,08:05:00,S3,2
T2,08:00:00,08:00:00,S2,1
T2,08:03:00,08:03:00,S1,2
T3,09:00:00,09:00:00,S4,1
T3,09:10:00,09:10:00,S2,2
`,
}

// secondFeed overlaps edinburghFeed on 100001 with a different name.
var secondFeed = map[string]string{
	"agency.txt": `agency_id,agency_name,agency_url,agency_timezone
EC,East Coast,https://example.com,Europe/London
`,
	"stops.txt": `stop_id,stop_code,stop_name,stop_lat,stop_lon
E1,100001,Duplicate Princes Street,55.9533,-3.1883
E2,200001,Musselburgh,55.9420,-3.0540
`,
	"routes.txt": `route_id,agency_id,route_short_name,route_long_name,route_type
X5,EC,X5,,3
`,
	"calendar.txt": `service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
WK,1,1,1,1,1,1,1,20250101,20271231
`,
	"trips.txt": `route_id,service_id,trip_id
X5,WK,E-T1
`,
	"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence
E-T1,07:00:00,07:00:00,E1,1
E-T1,07:20:00,07:20:00,E2,2
`,
}

func buildGTFSZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to GTFS zip: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s to GTFS zip: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close GTFS zip: %v", err)
	}
	return buf.Bytes()
}

func setupGtfsServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeGtfsFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gtfs.zip")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write GTFS zip: %v", err)
	}
	return path
}
