// Package alerts keeps proximity alerts: "tell me when I am within N meters
// of this stop".
package alerts

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/metrics"
	"stopfinder.mybus.org/internal/models"
)

// MaxRadiusMeters bounds the radius of a single alert.
const MaxRadiusMeters = 10000

var (
	ErrInvalidAlert = errors.New("invalid proximity alert")
	ErrNotFound     = errors.New("proximity alert not found")
)

// StopLookup resolves a stop code to its record.
type StopLookup interface {
	Get(code string) (models.StopRecord, bool)
}

type Alert struct {
	ID           string    `json:"id"`
	StopCode     string    `json:"stop_code"`
	RadiusMeters float64   `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
}

// Triggered is an alert whose stop is within its radius of a checked location.
type Triggered struct {
	Alert           Alert   `json:"alert"`
	StopName        string  `json:"stop_name"`
	DistanceMeters  float64 `json:"distance_meters"`
	DistanceDisplay string  `json:"distance_display"`
}

// Store is a thread-safe set of proximity alerts.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]Alert
	nextID uint64
	stops  StopLookup
}

func NewStore(stops StopLookup) *Store {
	return &Store{
		alerts: make(map[string]Alert),
		stops:  stops,
	}
}

// Add registers an alert for a known stop.
func (s *Store) Add(stopCode string, radiusMeters float64) (Alert, error) {
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 || radiusMeters > MaxRadiusMeters {
		return Alert{}, fmt.Errorf("%w: radius %v must be in (0, %d] meters", ErrInvalidAlert, radiusMeters, MaxRadiusMeters)
	}
	if _, ok := s.stops.Get(stopCode); !ok {
		return Alert{}, fmt.Errorf("%w: unknown stop %q", ErrInvalidAlert, stopCode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	alert := Alert{
		ID:           strconv.FormatUint(s.nextID, 10),
		StopCode:     stopCode,
		RadiusMeters: radiusMeters,
		CreatedAt:    time.Now().UTC(),
	}
	s.alerts[alert.ID] = alert
	return alert, nil
}

// Remove deletes the alert with the given ID.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.alerts, id)
	return nil
}

// List returns all alerts, oldest first.
func (s *Store) List() []Alert {
	s.mu.RLock()
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ii, _ := strconv.ParseUint(out[i].ID, 10, 64)
		jj, _ := strconv.ParseUint(out[j].ID, 10, 64)
		return ii < jj
	})
	return out
}

// Evaluate returns every alert whose stop lies within its radius of the
// given location, nearest first. Alerts on stops that are no longer indexed
// are ignored.
func (s *Store) Evaluate(lat, lon float64) ([]Triggered, error) {
	if err := geo.ValidateLatLon(lat, lon); err != nil {
		return nil, err
	}

	triggered := make([]Triggered, 0)
	for _, alert := range s.List() {
		stop, ok := s.stops.Get(alert.StopCode)
		if !ok {
			continue
		}
		distance := geo.Distance(lat, lon, stop.Latitude, stop.Longitude)
		if distance > alert.RadiusMeters {
			continue
		}
		triggered = append(triggered, Triggered{
			Alert:           alert,
			StopName:        stop.Name,
			DistanceMeters:  distance,
			DistanceDisplay: geo.FormatDistance(distance),
		})
	}

	sort.SliceStable(triggered, func(i, j int) bool {
		return triggered[i].DistanceMeters < triggered[j].DistanceMeters
	})
	metrics.ProximityAlertsTriggered.Add(float64(len(triggered)))
	return triggered, nil
}
