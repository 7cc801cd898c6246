package models

// StopRecord is one bus stop as loaded from a feed.
// Records are treated as immutable once they are handed to the stop index.
type StopRecord struct {
	Code        string   `json:"stop_code"`
	Name        string   `json:"stop_name"`
	Locality    string   `json:"locality,omitempty"`
	Latitude    float64  `json:"lat"`
	Longitude   float64  `json:"lon"`
	Orientation int      `json:"orientation"`
	Services    []string `json:"services"`
}

// ServesAny reports whether the stop is called at by at least one of the given services.
func (s StopRecord) ServesAny(services map[string]struct{}) bool {
	for _, name := range s.Services {
		if _, ok := services[name]; ok {
			return true
		}
	}
	return false
}

// SearchResult is a StopRecord placed relative to a query location.
// It is built fresh for every query and never cached.
type SearchResult struct {
	StopCode        string   `json:"stop_code"`
	StopName        string   `json:"stop_name"`
	Locality        string   `json:"locality,omitempty"`
	Orientation     int      `json:"orientation"`
	Services        []string `json:"services"`
	ServicesDisplay string   `json:"services_display"`
	DistanceMeters  float64  `json:"distance_meters"`
	DistanceDisplay string   `json:"distance_display"`
}
