// Package dataset holds the reference tables used to classify reported entries.
package dataset

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// snapshot is an immutable pair of reference tables. It is never modified after
// being published, so readers need no lock.
type snapshot struct {
	disallowed map[string]string
	permitted  map[string]string
	source     models.DatasetSource
}

// Store is the reference dataset: disallowed entry -> display name and
// permitted entry -> display name, plus the load state.
type Store struct {
	current atomic.Pointer[snapshot]
	loaded  atomic.Bool
	loading atomic.Bool

	mu        sync.Mutex
	nextSubID int
	subs      map[int]func(models.DatasetCounts)
}

// NewStore creates an empty, not yet loaded store.
func NewStore() *Store {
	s := &Store{subs: make(map[int]func(models.DatasetCounts))}
	s.current.Store(&snapshot{
		disallowed: map[string]string{},
		permitted:  map[string]string{},
		source:     models.SourceNone,
	})
	return s
}

// ReplaceAll swaps both tables at once. The maps are copied; later changes by
// the caller do not leak into the store.
func (s *Store) ReplaceAll(disallowed, permitted map[string]string, source models.DatasetSource) {
	next := &snapshot{
		disallowed: make(map[string]string, len(disallowed)),
		permitted:  make(map[string]string, len(permitted)),
		source:     source,
	}
	maps.Copy(next.disallowed, disallowed)
	maps.Copy(next.permitted, permitted)
	s.current.Store(next)
}

// Disallowed returns the display name for a disallowed entry.
func (s *Store) Disallowed(key string) (string, bool) {
	name, ok := s.current.Load().disallowed[key]
	return name, ok
}

// Permitted returns the display name for a permitted entry.
func (s *Store) Permitted(key string) (string, bool) {
	name, ok := s.current.Load().permitted[key]
	return name, ok
}

// Loaded reports whether at least one load (remote or fallback) has completed.
func (s *Store) Loaded() bool { return s.loaded.Load() }

// Loading reports whether a load attempt is in progress.
func (s *Store) Loading() bool { return s.loading.Load() }

// BeginLoad marks a load attempt as started. It returns false if one is already
// in progress.
func (s *Store) BeginLoad() bool {
	return s.loading.CompareAndSwap(false, true)
}

// CompleteLoad publishes new tables, marks the store loaded and notifies
// subscribers. Subscribers always observe both tables fully populated.
func (s *Store) CompleteLoad(disallowed, permitted map[string]string, source models.DatasetSource) {
	s.ReplaceAll(disallowed, permitted, source)
	s.loaded.Store(true)
	s.loading.Store(false)

	counts := s.Counts()
	for _, fn := range s.subscribers() {
		fn(counts)
	}
}

// OnLoaded registers fn to be called after every completed load. The returned
// function removes the subscription.
func (s *Store) OnLoaded(fn func(models.DatasetCounts)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) subscribers() []func(models.DatasetCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]func(models.DatasetCounts), 0, len(s.subs))
	for id := 0; id < s.nextSubID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Counts returns the size and origin of the current tables.
func (s *Store) Counts() models.DatasetCounts {
	snap := s.current.Load()
	return models.DatasetCounts{
		Source:     snap.source,
		Disallowed: len(snap.disallowed),
		Permitted:  len(snap.permitted),
	}
}

// Tables returns copies of both tables.
func (s *Store) Tables() (disallowed, permitted map[string]string) {
	snap := s.current.Load()
	return maps.Clone(snap.disallowed), maps.Clone(snap.permitted)
}
