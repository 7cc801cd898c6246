package geo

import (
	"fmt"
	"math"
)

// FormatDistance renders a distance for display: whole meters below one
// kilometer ("999 m"), kilometers with one decimal place from there ("1.5 km").
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	if meters < 0 {
		meters = 0
	}
	return fmt.Sprintf("%d m", int(math.Floor(meters)))
}

// Orientation codes for the eight compass directions, clockwise from north.
const (
	North = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var orientationNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// OrientationFromBearing buckets a bearing in degrees into one of the eight
// orientation codes. Each bucket spans 45 degrees centred on its direction.
func OrientationFromBearing(bearing float64) int {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	return int(math.Mod(b+22.5, 360) / 45)
}

// OrientationName returns the compass abbreviation for an orientation code,
// or "" when the code is out of range.
func OrientationName(code int) string {
	if code < 0 || code >= len(orientationNames) {
		return ""
	}
	return orientationNames[code]
}
