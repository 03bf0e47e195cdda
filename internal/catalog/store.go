package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/guttosm/dappulse/internal/domain/models"
)

// Snapshot pairs the catalog in service with the status of the pass that
// last touched it.
type Snapshot struct {
	Catalog *Catalog
	Status  models.RefreshStatus
}

// Store holds the current Snapshot. Reads are lock-free; Apply swaps.
//
// With retainLastGood set, a failed pass keeps the previous catalog and only
// replaces the status. Without it, a failed pass installs an empty catalog.
type Store struct {
	current        atomic.Pointer[Snapshot]
	retainLastGood bool

	mu      sync.Mutex
	nextSub int
	subs    map[int]chan struct{}
}

// NewStore returns a store holding an empty catalog.
func NewStore(retainLastGood bool) *Store {
	s := &Store{retainLastGood: retainLastGood, subs: map[int]chan struct{}{}}
	s.current.Store(&Snapshot{Catalog: Empty()})
	return s
}

// Current returns the snapshot in service.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Catalog is shorthand for Current().Catalog.
func (s *Store) Catalog() *Catalog {
	return s.current.Load().Catalog
}

// Loaded reports whether any successful pass has been applied.
func (s *Store) Loaded() bool {
	return !s.current.Load().Catalog.BuiltAt().IsZero()
}

// Apply installs the outcome of a pass and notifies subscribers.
// It returns the snapshot now in service.
func (s *Store) Apply(c *Catalog, status models.RefreshStatus) *Snapshot {
	next := &Snapshot{Catalog: c, Status: status}
	if c == nil || !status.OK() {
		prev := s.current.Load()
		if s.retainLastGood && prev.Catalog.Len() > 0 {
			status.Retained = true
			next = &Snapshot{Catalog: prev.Catalog, Status: status}
		} else {
			next = &Snapshot{Catalog: Empty(), Status: status}
		}
	}
	s.current.Store(next)
	s.notify()
	return next
}

// Subscribe returns a channel that receives a signal after every Apply.
// Signals coalesce: a slow reader sees at most one pending signal.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
