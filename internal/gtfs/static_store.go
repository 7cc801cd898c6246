package gtfs

import (
	"sync"

	"stopfinder.mybus.org/internal/models"
)

// FeedStore keeps the last successfully converted stops of every feed so a
// feed that fails to refresh keeps contributing its previous stops.
type FeedStore struct {
	mu   sync.RWMutex
	data map[int][]models.StopRecord
}

// NewFeedStore returns an empty FeedStore. The map is created on first Set.
func NewFeedStore() *FeedStore {
	return &FeedStore{}
}

// Set stores the records of a feed, replacing any previous ones.
func (s *FeedStore) Set(feedID int, records []models.StopRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[int][]models.StopRecord)
	}
	s.data[feedID] = records
}

// Get returns the last stored records of a feed.
func (s *FeedStore) Get(feedID int) ([]models.StopRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.data[feedID]
	return data, exists
}

// Retain drops every feed whose ID is not in ids.
func (s *FeedStore) Retain(ids map[int]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.data {
		if _, keep := ids[id]; !keep {
			delete(s.data, id)
		}
	}
}
