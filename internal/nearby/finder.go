// Package nearby answers "which stops are closest to this point" queries
// against a stop index.
package nearby

import (
	"context"
	"sort"
	"strings"
	"time"

	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/metrics"
	"stopfinder.mybus.org/internal/models"
)

// Default search window half-widths in degrees. They give roughly a 500 m by
// 500 m window at Edinburgh's latitude; other regions should pass their own
// spans with WithSpans.
const (
	DefaultLatSpan = 0.004499
	DefaultLonSpan = 0.008001
)

// StopIndex is the range-query capability the finder needs from a stop store.
type StopIndex interface {
	Query(box geo.BoundingBox, services []string) []models.StopRecord
}

// Finder runs nearest-stop queries. It holds no per-query state and is safe
// for concurrent use.
type Finder struct {
	index   StopIndex
	latSpan float64
	lonSpan float64
}

// Option configures a Finder.
type Option func(*Finder)

// WithSpans overrides the half-widths of the search window in degrees.
// Non-positive values leave the default in place.
func WithSpans(latSpan, lonSpan float64) Option {
	return func(f *Finder) {
		if latSpan > 0 {
			f.latSpan = latSpan
		}
		if lonSpan > 0 {
			f.lonSpan = lonSpan
		}
	}
}

// NewFinder returns a Finder over the given index.
func NewFinder(index StopIndex, opts ...Option) *Finder {
	f := &Finder{
		index:   index,
		latSpan: DefaultLatSpan,
		lonSpan: DefaultLonSpan,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Spans returns the latitude and longitude half-widths of the search window.
func (f *Finder) Spans() (latSpan, lonSpan float64) {
	return f.latSpan, f.lonSpan
}

// FindNearestStops returns the stops inside the search window around
// (lat, lon), nearest first. When services is non-empty only stops served by
// at least one of them are considered.
//
// Coordinates out of range fail with an error wrapping
// geo.ErrInvalidCoordinates. No stops in range is an empty, non-nil slice.
// Stops at equal distance keep the order the index returned them in.
func (f *Finder) FindNearestStops(ctx context.Context, lat, lon float64, services []string) ([]models.SearchResult, error) {
	if err := geo.ValidateLatLon(lat, lon); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	box := geo.BoundingBoxAround(lat, lon, f.latSpan, f.lonSpan)
	candidates := f.index.Query(box, services)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(candidates))
	for _, stop := range candidates {
		results = append(results, NewSearchResult(stop, geo.Distance(lat, lon, stop.Latitude, stop.Longitude)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})

	metrics.NearestQueryDuration.Observe(time.Since(start).Seconds())
	metrics.NearestQueryResults.Observe(float64(len(results)))
	return results, nil
}

// NewSearchResult places a stop at the given distance from a query point.
func NewSearchResult(stop models.StopRecord, distanceMeters float64) models.SearchResult {
	services := SortServices(stop.Services)
	return models.SearchResult{
		StopCode:        stop.Code,
		StopName:        stop.Name,
		Locality:        stop.Locality,
		Orientation:     stop.Orientation,
		Services:        services,
		ServicesDisplay: strings.Join(services, ", "),
		DistanceMeters:  distanceMeters,
		DistanceDisplay: geo.FormatDistance(distanceMeters),
	}
}
