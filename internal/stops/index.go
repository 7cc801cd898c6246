// Package stops holds the in-memory spatial index of bus stops.
package stops

import (
	"sort"
	"sync"
	"time"

	"github.com/tidwall/rtree"
	"stopfinder.mybus.org/internal/geo"
	"stopfinder.mybus.org/internal/models"
)

// BuildStats summarises one index build.
type BuildStats struct {
	Accepted   int
	Duplicates int
	Invalid    int
}

// snapshot is one immutable generation of the index. Queries read a snapshot
// under the read lock; Replace builds a new one and swaps the pointer.
type snapshot struct {
	records   []models.StopRecord
	byCode    map[string]int
	tree      *rtree.RTree
	extent    geo.BoundingBox
	updatedAt time.Time
}

// Index is a thread-safe spatial index of StopRecords.
//
// Any number of queries may run at once. A refresh via Replace waits for
// in-flight queries to finish and is never observed half-applied.
type Index struct {
	mu   sync.RWMutex
	snap *snapshot
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{snap: &snapshot{byCode: map[string]int{}, tree: &rtree.RTree{}}}
}

// Replace swaps the indexed stops for the given records.
//
// Records with an empty code or out of range coordinates are skipped, and
// when two records share a code the first one wins.
func (idx *Index) Replace(records []models.StopRecord) BuildStats {
	snap, stats := build(records)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.snap = snap
	return stats
}

func build(records []models.StopRecord) (*snapshot, BuildStats) {
	var stats BuildStats
	snap := &snapshot{
		records:   make([]models.StopRecord, 0, len(records)),
		byCode:    make(map[string]int, len(records)),
		tree:      &rtree.RTree{},
		updatedAt: time.Now(),
	}
	points := make([]geo.Point, 0, len(records))

	for _, r := range records {
		if r.Code == "" || geo.ValidateLatLon(r.Latitude, r.Longitude) != nil {
			stats.Invalid++
			continue
		}
		if _, exists := snap.byCode[r.Code]; exists {
			stats.Duplicates++
			continue
		}

		r.Services = normaliseServices(r.Services)
		i := len(snap.records)
		snap.records = append(snap.records, r)
		snap.byCode[r.Code] = i

		// For points, min and max are the same [lat, lon]
		pt := [2]float64{r.Latitude, r.Longitude}
		snap.tree.Insert(pt, pt, i)
		points = append(points, geo.Point{ID: r.Code, Lat: r.Latitude, Lon: r.Longitude})
	}

	stats.Accepted = len(snap.records)
	if extent, err := geo.ComputeBoundingBox(points); err == nil {
		snap.extent = extent
	}
	return snap, stats
}

// normaliseServices returns a sorted copy of services without blanks or duplicates.
func normaliseServices(services []string) []string {
	seen := make(map[string]struct{}, len(services))
	out := make([]string, 0, len(services))
	for _, s := range services {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Query returns every stop inside box, edges included. When services is
// non-empty, only stops served by at least one of them are returned.
//
// Results come back in the order the stops were given to Replace.
// An empty box yields an empty, non-nil slice.
func (idx *Index) Query(box geo.BoundingBox, services []string) []models.StopRecord {
	filter := serviceSet(services)

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	snap := idx.snap

	var hits []int
	snap.tree.Search(
		[2]float64{box.MinLat, box.MinLon},
		[2]float64{box.MaxLat, box.MaxLon},
		func(min, max [2]float64, data interface{}) bool {
			i, ok := data.(int)
			if !ok {
				return true
			}
			r := snap.records[i]
			if !box.Contains(r.Latitude, r.Longitude) {
				return true
			}
			if len(filter) > 0 && !r.ServesAny(filter) {
				return true
			}
			hits = append(hits, i)
			return true
		},
	)

	sort.Ints(hits)
	results := make([]models.StopRecord, 0, len(hits))
	for _, i := range hits {
		results = append(results, copyRecord(snap.records[i]))
	}
	return results
}

func serviceSet(services []string) map[string]struct{} {
	if len(services) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(services))
	for _, s := range services {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// copyRecord detaches the services slice so callers cannot mutate the index.
func copyRecord(r models.StopRecord) models.StopRecord {
	r.Services = append([]string(nil), r.Services...)
	return r
}

// Get returns the stop with the given code.
func (idx *Index) Get(code string) (models.StopRecord, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	i, ok := idx.snap.byCode[code]
	if !ok {
		return models.StopRecord{}, false
	}
	return copyRecord(idx.snap.records[i]), true
}

// Len returns the number of indexed stops.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.snap.records)
}

// Extent returns the bounding box of all indexed stops and false when the index is empty.
func (idx *Index) Extent() (geo.BoundingBox, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap.extent, len(idx.snap.records) > 0
}

// UpdatedAt returns when the current contents were built. It is zero before the first Replace.
func (idx *Index) UpdatedAt() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap.updatedAt
}
