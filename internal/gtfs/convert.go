package gtfs

import (
	"strings"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/models"
)

// ConvertStops turns the boarding points of a parsed bundle into StopRecords.
//
// Only plain stops (location_type 0) with usable coordinates are kept; the
// second return value counts the rows dropped for bad coordinates. Records are
// returned in stops.txt order.
func ConvertStops(static *remoteGtfs.Static) ([]models.StopRecord, int) {
	if static == nil {
		return nil, 0
	}

	services := servicesByStop(static)
	orientations := orientationsByStop(static)

	records := make([]models.StopRecord, 0, len(static.Stops))
	skipped := 0
	for i := range static.Stops {
		stop := &static.Stops[i]
		if !isBoardingPoint(stop.Type) {
			continue
		}
		if stop.Latitude == nil || stop.Longitude == nil || !geo.IsValidLatLon(*stop.Latitude, *stop.Longitude) {
			skipped++
			continue
		}

		records = append(records, models.StopRecord{
			Code:        stopCode(stop),
			Name:        strings.TrimSpace(stop.Name),
			Locality:    locality(stop),
			Latitude:    *stop.Latitude,
			Longitude:   *stop.Longitude,
			Orientation: orientations[stop.Id],
			Services:    services[stop.Id],
		})
	}
	return records, skipped
}

// isBoardingPoint accepts location_type 0 rows. The parser reports those as
// type 5 (platform) when they sit inside a parent station.
func isBoardingPoint(t remoteGtfs.StopType) bool {
	return t == 0 || t == 5
}

// stopCode prefers the public stop_code and falls back to stop_id.
func stopCode(stop *remoteGtfs.Stop) string {
	if code := strings.TrimSpace(stop.Code); code != "" {
		return code
	}
	return stop.Id
}

func locality(stop *remoteGtfs.Stop) string {
	if desc := strings.TrimSpace(stop.Description); desc != "" {
		return desc
	}
	if stop.Parent != nil {
		return strings.TrimSpace(stop.Parent.Name)
	}
	return ""
}

func routeName(route *remoteGtfs.Route) string {
	if route == nil {
		return ""
	}
	if route.ShortName != "" {
		return route.ShortName
	}
	if route.LongName != "" {
		return route.LongName
	}
	return route.Id
}

// servicesByStop collects the route names calling at each stop ID.
func servicesByStop(static *remoteGtfs.Static) map[string][]string {
	seen := make(map[string]map[string]struct{})
	out := make(map[string][]string)
	for i := range static.Trips {
		trip := &static.Trips[i]
		name := routeName(trip.Route)
		if name == "" {
			continue
		}
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			id := st.Stop.Id
			if seen[id] == nil {
				seen[id] = make(map[string]struct{})
			}
			if _, ok := seen[id][name]; ok {
				continue
			}
			seen[id][name] = struct{}{}
			out[id] = append(out[id], name)
		}
	}
	return out
}

// orientationsByStop derives the facing of each stop from the first trip that
// calls there: the bearing towards the next stop, or from the previous stop
// when it is the last call of the trip.
func orientationsByStop(static *remoteGtfs.Static) map[string]int {
	out := make(map[string]int)
	for i := range static.Trips {
		calls := static.Trips[i].StopTimes
		for k, st := range calls {
			if st.Stop == nil {
				continue
			}
			if _, done := out[st.Stop.Id]; done {
				continue
			}
			var from, to *remoteGtfs.Stop
			switch {
			case k+1 < len(calls):
				from, to = st.Stop, calls[k+1].Stop
			case k > 0:
				from, to = calls[k-1].Stop, st.Stop
			}
			if bearing, ok := bearingBetween(from, to); ok {
				out[st.Stop.Id] = geo.OrientationFromBearing(bearing)
			}
		}
	}
	return out
}

func bearingBetween(from, to *remoteGtfs.Stop) (float64, bool) {
	if from == nil || to == nil || from.Latitude == nil || from.Longitude == nil || to.Latitude == nil || to.Longitude == nil {
		return 0, false
	}
	if *from.Latitude == *to.Latitude && *from.Longitude == *to.Longitude {
		return 0, false
	}
	return geo.InitialBearing(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude), true
}
