// Package store holds the in-memory event snapshot. The snapshot is written
// exactly once per refresh (full replacement, never an incremental merge)
// and every later read (partition, ICS export, countdown tick) works
// against that immutable snapshot.
package store

import (
	"sync"
	"time"

	"econboard/internal/model"
)

// Store is the application's single event collection plus the small derived
// snapshots the 1-second tickers produce (wall-clock string and countdown
// labels). All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	events      []model.Event
	refreshedAt time.Time
	loadErr     error

	clock      string
	countdowns map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Replace swaps in a freshly parsed event set and clears any previous load
// error. The previous snapshot is discarded wholesale.
func (s *Store) Replace(events []model.Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.refreshedAt = at
	s.loadErr = nil
}

// SetLoadError records a failed refresh. Events from an earlier successful
// refresh (if any) are kept; the error is surfaced alongside them.
func (s *Store) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Snapshot returns the current event set and the time it was loaded. The
// returned slice must be treated as read-only.
func (s *Store) Snapshot() ([]model.Event, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events, s.refreshedAt
}

// LoadError returns the error from the most recent failed refresh, or nil.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Empty reports whether no snapshot has ever been loaded.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events == nil && s.refreshedAt.IsZero()
}

// SetClock stores the latest formatted wall-clock string.
func (s *Store) SetClock(clock string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Clock returns the latest formatted wall-clock string.
func (s *Store) Clock() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// SetCountdowns stores the latest per-event countdown labels, keyed by
// event ID.
func (s *Store) SetCountdowns(m map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdowns = m
}

// Countdowns returns a copy of the latest countdown labels.
func (s *Store) Countdowns() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.countdowns))
	for k, v := range s.countdowns {
		out[k] = v
	}
	return out
}
