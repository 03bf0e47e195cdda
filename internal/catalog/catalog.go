// Package catalog holds the parsed market records of one refresh pass.
//
// A Catalog is immutable once built. Refreshes build a new one and swap it
// into a Store, so readers never observe a partially updated catalog.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guttosm/dappulse/internal/domain/models"
)

// DuplicatePolicy decides which record survives when an instrument name
// appears more than once in a pass.
type DuplicatePolicy int

const (
	// LastWins keeps the record from the latest row (and rightmost block).
	LastWins DuplicatePolicy = iota
	// FirstWins keeps the first record read.
	FirstWins
)

// ParseDuplicatePolicy accepts "last" or "first".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "last-wins", "last_wins":
		return LastWins, nil
	case "first", "first-wins", "first_wins":
		return FirstWins, nil
	}
	return LastWins, fmt.Errorf("unknown duplicate policy %q", s)
}

func (p DuplicatePolicy) String() string {
	if p == FirstWins {
		return "first"
	}
	return "last"
}

// Catalog maps instrument names to market records.
type Catalog struct {
	order   []string
	index   map[string]models.MarketRecord
	dupes   int
	builtAt time.Time
}

// Empty returns a catalog with no records.
func Empty() *Catalog {
	return &Catalog{index: map[string]models.MarketRecord{}}
}

// New builds a catalog from records in parse order.
func New(records []models.MarketRecord, policy DuplicatePolicy) *Catalog {
	c := &Catalog{
		order:   make([]string, 0, len(records)),
		index:   make(map[string]models.MarketRecord, len(records)),
		builtAt: time.Now().UTC(),
	}
	for _, r := range records {
		if _, seen := c.index[r.Instrument]; seen {
			c.dupes++
			if policy == FirstWins {
				continue
			}
		} else {
			c.order = append(c.order, r.Instrument)
		}
		c.index[r.Instrument] = r
	}
	return c
}

// Lookup returns the record for an instrument name (exact match).
func (c *Catalog) Lookup(name string) (models.MarketRecord, bool) {
	r, ok := c.index[name]
	return r, ok
}

// Len is the number of distinct instruments.
func (c *Catalog) Len() int { return len(c.order) }

// Duplicates is the number of records that collided with an earlier name.
func (c *Catalog) Duplicates() int { return c.dupes }

// BuiltAt is when the catalog was built (zero for Empty).
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Records returns all records in first-appearance order.
func (c *Catalog) Records() []models.MarketRecord {
	out := make([]models.MarketRecord, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.index[name])
	}
	return out
}

// ByKind returns the records of one kind in first-appearance order.
func (c *Catalog) ByKind(kind models.Kind) []models.MarketRecord {
	var out []models.MarketRecord
	for _, name := range c.order {
		if r := c.index[name]; r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Instruments returns sorted instrument names, optionally restricted to kind
// (empty kind means all).
func (c *Catalog) Instruments(kind models.Kind) []string {
	out := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if kind == "" || c.index[name].Kind == kind {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
