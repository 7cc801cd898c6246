package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// ErrInvalidCoordinates is returned when a latitude or longitude lies outside
// the valid geographic range or is not a finite number.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains checks whether the given latitude and longitude are within the bounding box.
// Edges are inclusive.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// IsZero reports whether the box was never set.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// BoundingBoxAround returns the fixed-size window centred on a point.
//
// The window is a rectangle in degrees, not a circle, so stops in its corners
// can be farther away than stops on its edges.
func BoundingBoxAround(lat, lon, latSpan, lonSpan float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - latSpan,
		MaxLat: lat + latSpan,
		MinLon: lon - lonSpan,
		MaxLon: lon + lonSpan,
	}
}

// Point is a labelled coordinate.
type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// ComputeBoundingBox computes the extent of a set of points.
func ComputeBoundingBox(points []Point) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, fmt.Errorf("no points to compute bounding box")
	}

	minLat := math.MaxFloat64
	maxLat := -math.MaxFloat64
	minLon := math.MaxFloat64
	maxLon := -math.MaxFloat64

	for _, p := range points {
		if ValidateLatLon(p.Lat, p.Lon) != nil {
			continue
		}
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	if minLat == math.MaxFloat64 {
		return BoundingBox{}, fmt.Errorf("no valid latitude/longitude found in points")
	}

	return BoundingBox{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLon: minLon,
		MaxLon: maxLon,
	}, nil
}

// IsValidLatLon returns true if the given latitude and longitude values
// fall within the valid geographic coordinate bounds.
//
// Note: This function treats the coordinate (0,0) as invalid, even though it
// is a valid location in the Gulf of Guinea. Feeds commonly use (0,0) as a
// placeholder for stops whose position is unknown, so feed rows at (0,0) are
// dropped. Query input is checked with ValidateLatLon instead.
func IsValidLatLon(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return ValidateLatLon(lat, lon) == nil
}

// ValidateLatLon returns an error wrapping ErrInvalidCoordinates when lat is
// outside [-90, 90], lon is outside [-180, 180], or either is NaN or infinite.
func ValidateLatLon(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, lon)
	}
	return nil
}

// earthRadiusInMeters represents the mean radius of the Earth in meters.
//
// This value (6,371,000 meters) is the Earth's volumetric mean radius.
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const earthRadiusInMeters = 6371000

// Distance returns the great-circle distance in meters between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusInMeters
}

// InitialBearing returns the initial bearing in degrees, in [0, 360), of the
// great circle from the first point to the second.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	phi1 := p1.Lat.Radians()
	phi2 := p2.Lat.Radians()
	deltaLambda := (p2.Lng - p1.Lng).Radians()

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	if bearing >= 360 {
		bearing -= 360
	}
	return bearing
}

// DistanceAndBearing returns Distance and InitialBearing for the same pair of points.
func DistanceAndBearing(lat1, lon1, lat2, lon2 float64) (meters, degrees float64) {
	return Distance(lat1, lon1, lat2, lon2), InitialBearing(lat1, lon1, lat2, lon2)
}
