package httplog

import "sync/atomic"

// Store holds the current Configuration.
//
// Snapshots are swapped atomically, so a reader never sees a half-written
// Configuration. Nothing ties an Update to a record being rendered: a record
// whose request and response sections straddle an Update can mix old and new
// settings. Configure at setup time.
type Store struct {
	current atomic.Pointer[Configuration]
}

//nolint:gochecknoglobals // The default store backs the package-level Configure helpers.
var defaultStore = NewStore()

// NewStore creates a Store holding DefaultConfiguration.
func NewStore() *Store {
	s := &Store{}
	s.Reset()

	return s
}

// Get returns a snapshot of the current configuration.
func (s *Store) Get() Configuration {
	return s.current.Load().clone()
}

// Update applies mutator to a copy of the current configuration and publishes it.
// Fields the mutator leaves alone keep their values.
func (s *Store) Update(mutator func(*Configuration)) {
	cfg := s.Get()
	mutator(&cfg)

	s.set(cfg)
}

// Reset restores DefaultConfiguration.
func (s *Store) Reset() {
	s.set(DefaultConfiguration())
}

// With applies mutator, runs fn and restores the configuration that was
// current before, even if fn panics.
func (s *Store) With(mutator func(*Configuration), fn func()) {
	previous := s.Get()
	defer s.set(previous)

	s.Update(mutator)
	fn()
}

func (s *Store) set(cfg Configuration) {
	cfg = cfg.clone()
	s.current.Store(&cfg)
}

// DefaultStore returns the process-wide store used when a Pipeline is built without one.
func DefaultStore() *Store {
	return defaultStore
}

// Configure updates the process-wide store.
func Configure(mutator func(*Configuration)) {
	defaultStore.Update(mutator)
}

// Current returns a snapshot of the process-wide configuration.
func Current() Configuration {
	return defaultStore.Get()
}
