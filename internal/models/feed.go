package models

// Feed describes one GTFS static source of stop data.
//
// OBABaseURL and OBAApiKey are optional. When set, the upstream OneBusAway
// server that publishes the feed is pinged on every refresh.
type Feed struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	GtfsURL    string `json:"gtfs_url" yaml:"gtfs_url"`
	OBABaseURL string `json:"oba_base_url,omitempty" yaml:"oba_base_url,omitempty"`
	OBAApiKey  string `json:"oba_api_key,omitempty" yaml:"oba_api_key,omitempty"`
}

// NewFeed creates a Feed with the given source and no upstream server.
func NewFeed(id int, name, gtfsURL string) *Feed {
	return &Feed{
		ID:      id,
		Name:    name,
		GtfsURL: gtfsURL,
	}
}
