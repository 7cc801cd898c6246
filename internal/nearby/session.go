package nearby

import (
	"context"
	"sync"
	"sync/atomic"

	"stopfinder.mybus.org/internal/metrics"
	"stopfinder.mybus.org/internal/models"
)

// Request is one nearest-stop query issued through a Session.
type Request struct {
	Lat      float64
	Lon      float64
	Services []string
}

// Response carries the outcome of a Request.
type Response struct {
	Generation uint64
	Request    Request
	Results    []models.SearchResult
	Err        error
}

// Session runs queries in the background for one consumer, typically one
// stream of location updates. Each Submit supersedes the previous one: a
// result is delivered only if no newer request has been issued by the time
// it is ready, so the consumer always ends on the latest request's answer.
type Session struct {
	finder     *Finder
	generation atomic.Uint64

	// deliverMu orders the generation check with the delivery itself.
	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// NewSession returns a Session that runs queries with finder.
func NewSession(finder *Finder) *Session {
	return &Session{finder: finder}
}

// Submit starts req in a new goroutine and returns its generation.
// deliver is called at most once, from that goroutine, and never
// concurrently with another delivery from the same Session.
func (s *Session) Submit(ctx context.Context, req Request, deliver func(Response)) uint64 {
	gen := s.generation.Add(1)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		results, err := s.finder.FindNearestStops(ctx, req.Lat, req.Lon, req.Services)

		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		if s.generation.Load() != gen {
			metrics.SupersededQueries.Inc()
			return
		}
		deliver(Response{
			Generation: gen,
			Request:    req,
			Results:    results,
			Err:        err,
		})
	}()

	return gen
}

// Latest returns the generation of the most recent Submit, or 0 if none.
func (s *Session) Latest() uint64 {
	return s.generation.Load()
}

// IsCurrent reports whether gen is still the latest issued generation.
func (s *Session) IsCurrent(gen uint64) bool {
	return s.generation.Load() == gen
}

// Wait blocks until every submitted query has finished or been dropped.
func (s *Session) Wait() {
	s.wg.Wait()
}
