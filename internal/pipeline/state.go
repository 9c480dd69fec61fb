package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
)

// State holds the most recently published snapshot. Readers never block;
// transitions replace the snapshot as a whole.
type State struct {
	mu      sync.Mutex
	current atomic.Pointer[domain.Snapshot]
}

// Current returns the published snapshot, or nil before the first cycle.
func (s *State) Current() *domain.Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot with the result of a new cycle.
func (s *State) Publish(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(&snap)
}

// ApplyWind merges enrichment results by id into the current snapshot and
// returns the new value. Objects without a result are left untouched. It
// returns nil when nothing has been published.
func (s *State) ApplyWind(results map[string]domain.WindResult) *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur == nil {
		return nil
	}
	next := *cur
	next.Trajectories = domain.MergeWind(cur.Trajectories, results)
	s.current.Store(&next)
	return &next
}
