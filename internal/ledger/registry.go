package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/guttosm/dappulse/internal/idgen"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	ledger   *Ledger
	lastSeen time.Time
}

// Registry owns one Ledger per session. Sessions never share positions.
// A session idle for longer than ttl is dropped on the next Sweep or lookup.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	ids      *idgen.Clock
	sessions map[string]*session
	now      func() time.Time
}

// NewRegistry returns a registry; ttl <= 0 keeps sessions forever.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		ids:      idgen.NewClock(),
		sessions: map[string]*session{},
		now:      time.Now,
	}
}

// Create opens a new session and returns its ID.
func (r *Registry) Create() string {
	id := idgen.ULID()
	r.mu.Lock()
	r.sessions[id] = &session{ledger: New(r.ids), lastSeen: r.now()}
	r.mu.Unlock()
	return id
}

// Ledger returns the ledger of a live session and refreshes its idle timer.
func (r *Registry) Ledger(id string) (*Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := r.now()
	if r.expired(s, now) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	s.lastSeen = now
	return s.ledger, nil
}

// Delete drops a session and its positions.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len is the number of sessions currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.lastSeen) > r.ttl
}
