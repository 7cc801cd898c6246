package geo

import "testing"

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters   float64
		expected string
	}{
		{0, "0 m"},
		{12.7, "12 m"},
		{999, "999 m"},
		{999.9, "999 m"},
		{1000, "1.0 km"},
		{1500, "1.5 km"},
		{12345, "12.3 km"},
	}

	for _, tt := range tests {
		if got := FormatDistance(tt.meters); got != tt.expected {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.meters, got, tt.expected)
		}
	}
}

func TestOrientationFromBearing(t *testing.T) {
	tests := []struct {
		bearing  float64
		expected int
	}{
		{0, North},
		{22.4, North},
		{22.5, NorthEast},
		{90, East},
		{180, South},
		{200, South},
		{315, NorthWest},
		{359, North},
		{-45, NorthWest},
		{720, North},
	}

	for _, tt := range tests {
		if got := OrientationFromBearing(tt.bearing); got != tt.expected {
			t.Errorf("OrientationFromBearing(%v) = %d, want %d", tt.bearing, got, tt.expected)
		}
	}
}

func TestOrientationName(t *testing.T) {
	if got := OrientationName(SouthWest); got != "SW" {
		t.Errorf("expected SW, got %q", got)
	}
	if got := OrientationName(8); got != "" {
		t.Errorf("expected empty name for out of range code, got %q", got)
	}
}
