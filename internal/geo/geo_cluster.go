package geo

import (
	"sort"

	"github.com/golang/geo/s2"
)

const (
	// DefaultClusterLevel is the S2 cell level used when no zoom is given (7–10 km cells).
	DefaultClusterLevel = 10

	minClusterLevel = 1
	maxClusterLevel = s2.MaxLevel
)

// Cluster is a group of points sharing one S2 cell.
type Cluster struct {
	Token string   `json:"token"`
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// CellToken generates a stable S2 cell token for a lat/lon at the given level.
func CellToken(lat, lon float64, level int) string {
	ll := s2.LatLngFromDegrees(lat, lon)
	return s2.CellIDFromLatLng(ll).Parent(clampLevel(level)).ToToken()
}

// LevelForZoom maps a web map zoom level onto an S2 cell level. Both halve
// their tile edge per step, so the mapping is one to one within S2's range.
func LevelForZoom(zoom int) int {
	return clampLevel(zoom)
}

func clampLevel(level int) int {
	if level < minClusterLevel {
		return minClusterLevel
	}
	if level > maxClusterLevel {
		return maxClusterLevel
	}
	return level
}

// ClusterPoints groups points by their S2 cell at the given level.
// Each cluster is positioned at the centroid of its members.
// Clusters are returned in token order so output is stable across calls.
func ClusterPoints(points []Point, level int) []Cluster {
	byToken := make(map[string]*Cluster)
	var tokens []string

	for _, p := range points {
		token := CellToken(p.Lat, p.Lon, level)
		c, ok := byToken[token]
		if !ok {
			c = &Cluster{Token: token}
			byToken[token] = c
			tokens = append(tokens, token)
		}
		// running mean keeps the centroid without a second pass
		c.Count++
		c.Lat += (p.Lat - c.Lat) / float64(c.Count)
		c.Lon += (p.Lon - c.Lon) / float64(c.Count)
		c.IDs = append(c.IDs, p.ID)
	}

	sort.Strings(tokens)
	clusters := make([]Cluster, 0, len(tokens))
	for _, token := range tokens {
		clusters = append(clusters, *byToken[token])
	}
	return clusters
}
