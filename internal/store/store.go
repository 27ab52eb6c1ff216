package store

import (
	"sync"

	"shiptrack/internal/models"
)

// Store is a concurrent map of live vessel states keyed by MMSI. All
// mutation is funneled through the single motion update task; request
// handlers only read. States are held by value so a reader always sees a
// vessel's full position tuple, never a half-applied update.
type Store struct {
	mu      sync.RWMutex
	vessels map[string]models.VesselState
}

// New creates an empty store.
func New() *Store {
	return &Store{vessels: make(map[string]models.VesselState)}
}

// Get returns the live state for the given MMSI, or models.ErrNotFound.
func (s *Store) Get(mmsi string) (models.VesselState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.vessels[mmsi]
	if !ok {
		return models.VesselState{}, models.ErrNotFound
	}
	return state, nil
}

// GetAll returns a point-in-time snapshot of every vessel state. The
// returned map is a copy; mutating it does not affect the store.
func (s *Store) GetAll() map[string]models.VesselState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]models.VesselState, len(s.vessels))
	for mmsi, state := range s.vessels {
		snapshot[mmsi] = state
	}
	return snapshot
}

// Upsert inserts or replaces the state for its MMSI.
func (s *Store) Upsert(state models.VesselState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vessels[state.MMSI] = state
}

// Len returns the number of tracked vessels.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.vessels)
}
