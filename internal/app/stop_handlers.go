package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/models"
	"stopfinder.mybus.org/internal/nearby"
)

// Viewports at or above this zoom return individual stops, below it S2 clusters.
const stopsZoomThreshold = 15

type nearestStopsResponse struct {
	Lat        float64               `json:"lat"`
	Lon        float64               `json:"lon"`
	OutOfRange bool                  `json:"out_of_range"`
	Count      int                   `json:"count"`
	Stops      []models.SearchResult `json:"stops"`
}

func (app *Application) nearestStopsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, fieldErrors := parseFloatParam(q, "lat", nil)
	lon, fieldErrors := parseFloatParam(q, "lon", fieldErrors)
	if len(fieldErrors) > 0 {
		app.validationErrorResponse(w, fieldErrors)
		return
	}

	results, err := app.Finder.FindNearestStops(r.Context(), lat, lon, parseList(q, "service"))
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinates):
		app.badRequestResponse(w, err)
		return
	case r.Context().Err() != nil:
		return
	case err != nil:
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, nearestStopsResponse{
		Lat:        lat,
		Lon:        lon,
		OutOfRange: !app.inCoverage(lat, lon),
		Count:      len(results),
		Stops:      results,
	})
}

func (app *Application) inCoverage(lat, lon float64) bool {
	extent, ok := app.Index.Extent()
	return ok && extent.Contains(lat, lon)
}

// stopPosition places a stop relative to the caller for the direction needle.
type stopPosition struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DistanceDisplay string  `json:"distance_display"`
	Bearing         float64 `json:"bearing"`
	Direction       string  `json:"direction"`
}

type stopResponse struct {
	models.StopRecord
	OrientationName string        `json:"orientation_name"`
	ServicesDisplay string        `json:"services_display"`
	Position        *stopPosition `json:"position,omitempty"`
}

func (app *Application) stopHandler(w http.ResponseWriter, r *http.Request) {
	code := httprouter.ParamsFromContext(r.Context()).ByName("code")
	stop, ok := app.Index.Get(code)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	services := nearby.SortServices(stop.Services)
	stop.Services = services
	resp := stopResponse{
		StopRecord:      stop,
		OrientationName: geo.OrientationName(stop.Orientation),
		ServicesDisplay: strings.Join(services, ", "),
	}

	q := r.URL.Query()
	if q.Get("lat") != "" || q.Get("lon") != "" {
		lat, fieldErrors := parseFloatParam(q, "lat", nil)
		lon, fieldErrors := parseFloatParam(q, "lon", fieldErrors)
		if len(fieldErrors) > 0 {
			app.validationErrorResponse(w, fieldErrors)
			return
		}
		if err := geo.ValidateLatLon(lat, lon); err != nil {
			app.badRequestResponse(w, err)
			return
		}
		distance, bearing := geo.DistanceAndBearing(lat, lon, stop.Latitude, stop.Longitude)
		resp.Position = &stopPosition{
			DistanceMeters:  distance,
			DistanceDisplay: geo.FormatDistance(distance),
			Bearing:         bearing,
			Direction:       geo.OrientationName(geo.OrientationFromBearing(bearing)),
		}
	}

	app.writeJSON(w, http.StatusOK, resp)
}

type viewportResponse struct {
	Zoom     int                 `json:"zoom"`
	Count    int                 `json:"count"`
	Stops    []models.StopRecord `json:"stops,omitempty"`
	Clusters []geo.Cluster       `json:"clusters,omitempty"`
}

func (app *Application) viewportHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minLat, fieldErrors := parseFloatParam(q, "min_lat", nil)
	minLon, fieldErrors := parseFloatParam(q, "min_lon", fieldErrors)
	maxLat, fieldErrors := parseFloatParam(q, "max_lat", fieldErrors)
	maxLon, fieldErrors := parseFloatParam(q, "max_lon", fieldErrors)
	zoom, fieldErrors := parseIntParam(q, "zoom", stopsZoomThreshold, fieldErrors)
	if len(fieldErrors) > 0 {
		app.validationErrorResponse(w, fieldErrors)
		return
	}

	for _, corner := range [][2]float64{{minLat, minLon}, {maxLat, maxLon}} {
		if err := geo.ValidateLatLon(corner[0], corner[1]); err != nil {
			app.badRequestResponse(w, err)
			return
		}
	}
	if minLat > maxLat || minLon > maxLon {
		app.validationErrorResponse(w, map[string][]string{
			"viewport": {"min_lat and min_lon must not exceed max_lat and max_lon"},
		})
		return
	}

	box := geo.BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
	found := app.Index.Query(box, parseList(q, "service"))

	resp := viewportResponse{Zoom: zoom, Count: len(found)}
	if zoom >= stopsZoomThreshold {
		resp.Stops = found
	} else {
		points := make([]geo.Point, 0, len(found))
		for _, s := range found {
			points = append(points, geo.Point{ID: s.Code, Lat: s.Latitude, Lon: s.Longitude})
		}
		resp.Clusters = geo.ClusterPoints(points, geo.LevelForZoom(zoom))
	}
	app.writeJSON(w, http.StatusOK, resp)
}
