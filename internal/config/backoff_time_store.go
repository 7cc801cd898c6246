package config

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
	Failures     int
}

// BackoffStore tracks, per feed ID, when a failing feed may be fetched again.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[int]backoffData
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[int]backoffData),
	}
}

// NextRetryAt reports when feedID may be retried. The bool is false when the
// feed is not backing off.
func (s *BackoffStore) NextRetryAt(feedID int) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[feedID]; exists {
		return backoff.NextRetryAt.UTC(), true
	}
	return time.Time{}, false
}

// ShouldSkip reports whether feedID is still inside its backoff window at now.
func (s *BackoffStore) ShouldSkip(feedID int, now time.Time) bool {
	next, ok := s.NextRetryAt(feedID)
	return ok && now.Before(next)
}

// Failures returns the number of consecutive failures recorded for feedID.
func (s *BackoffStore) Failures(feedID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backoffs[feedID].Failures
}

// UpdateBackoff records a failure for feedID and pushes its next retry out.
func (s *BackoffStore) UpdateBackoff(feedID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backoff, exists := s.backoffs[feedID]; exists {
		backoff.BackoffDelay = calculateNewBackoffDelay(backoff.BackoffDelay)
		backoff.NextRetryAt = calculateNextRetryAt(backoff.BackoffDelay)
		backoff.Failures++
		s.backoffs[feedID] = backoff
	} else {
		s.backoffs[feedID] = backoffData{
			BackoffDelay: BASE_BACKOFF,
			NextRetryAt:  calculateNextRetryAt(BASE_BACKOFF),
			Failures:     1,
		}
	}
}

// ResetBackoff clears the state for feedID after a successful fetch.
func (s *BackoffStore) ResetBackoff(feedID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, feedID)
}

func calculateNextRetryAt(backoff time.Duration) time.Time {
	jitter := time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
	backoff += jitter
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return time.Now().Add(backoff).UTC()
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}
