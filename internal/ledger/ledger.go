// Package ledger keeps the open positions of a session in memory.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/idgen"
)

// ErrInvalidPosition is wrapped by every validation failure in Add.
var ErrInvalidPosition = errors.New("invalid position")

// Ledger is the list of open positions of one session. It is safe for
// concurrent use; List returns copies.
type Ledger struct {
	mu        sync.Mutex
	ids       *idgen.Clock
	positions []models.Position
}

// New returns an empty ledger. A nil clock uses a private idgen.Clock.
func New(ids *idgen.Clock) *Ledger {
	if ids == nil {
		ids = idgen.NewClock()
	}
	return &Ledger{ids: ids}
}

// Add validates spec, stores it as a new position and returns its ID.
//
// Rules:
//   - exactly one of Instrument or Legs is set;
//   - every name is non-empty after trimming;
//   - every leg ratio is non-zero.
func (l *Ledger) Add(spec models.PositionSpec) (int64, error) {
	p, err := normalize(spec)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	p.ID = l.ids.Next()
	p.CreatedAt = time.Now().UTC()
	l.positions = append(l.positions, p)
	return p.ID, nil
}

// Remove deletes the position with id. It reports false when id is absent.
func (l *Ledger) Remove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.positions {
		if p.ID == id {
			l.positions = append(l.positions[:i], l.positions[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every position and returns how many were removed.
func (l *Ledger) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.positions)
	l.positions = nil
	return n
}

// Get returns one position by id.
func (l *Ledger) Get(id int64) (models.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.positions {
		if p.ID == id {
			return clonePosition(p), true
		}
	}
	return models.Position{}, false
}

// List returns the positions in insertion order.
func (l *Ledger) List() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, len(l.positions))
	for i, p := range l.positions {
		out[i] = clonePosition(p)
	}
	return out
}

// Len is the number of open positions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}

func normalize(spec models.PositionSpec) (models.Position, error) {
	p := models.Position{
		Name:       strings.TrimSpace(spec.Name),
		Instrument: strings.TrimSpace(spec.Instrument),
		Lots:       spec.Lots,
		EntryPrice: spec.EntryPrice,
	}
	if spec.TickValueOverride != nil {
		v := *spec.TickValueOverride
		p.TickValueOverride = &v
	}

	switch {
	case p.Instrument == "" && len(spec.Legs) == 0:
		return p, fmt.Errorf("%w: instrument or legs required", ErrInvalidPosition)
	case p.Instrument != "" && len(spec.Legs) > 0:
		return p, fmt.Errorf("%w: instrument and legs are mutually exclusive", ErrInvalidPosition)
	}

	for i, leg := range spec.Legs {
		name := strings.TrimSpace(leg.Instrument)
		if name == "" {
			return p, fmt.Errorf("%w: leg %d has no instrument", ErrInvalidPosition, i+1)
		}
		if leg.Ratio == 0 {
			return p, fmt.Errorf("%w: leg %d (%s) has zero ratio", ErrInvalidPosition, i+1, name)
		}
		p.Legs = append(p.Legs, models.Leg{Instrument: name, Ratio: leg.Ratio})
	}
	return p, nil
}

func clonePosition(p models.Position) models.Position {
	if p.Legs != nil {
		p.Legs = append([]models.Leg(nil), p.Legs...)
	}
	if p.TickValueOverride != nil {
		v := *p.TickValueOverride
		p.TickValueOverride = &v
	}
	return p
}
