// Package pnl values ledger positions against the current instrument catalog.
package pnl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/dappulse/internal/domain/models"
)

// NotAvailable is shown in place of a price that is missing from the catalog.
const NotAvailable = "N/A"

// Lookup resolves an instrument name to its current market record.
// *catalog.Catalog satisfies it.
type Lookup interface {
	Lookup(name string) (models.MarketRecord, bool)
}

// StructureTickPolicy decides the tick value of a multi-leg structure.
type StructureTickPolicy int

const (
	// LastLeg uses the tick value of the last leg found in the catalog.
	LastLeg StructureTickPolicy = iota
	// UniformLegs requires every found leg to share one tick value and marks
	// the structure invalid otherwise.
	UniformLegs
)

// ParseStructureTickPolicy maps a config value onto a policy.
func ParseStructureTickPolicy(s string) (StructureTickPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-leg", "last_leg", "last":
		return LastLeg, nil
	case "uniform", "uniform-legs", "uniform_legs":
		return UniformLegs, nil
	default:
		return LastLeg, fmt.Errorf("unknown structure tick policy %q", s)
	}
}

func (p StructureTickPolicy) String() string {
	if p == UniformLegs {
		return "uniform"
	}
	return "last-leg"
}

// Engine recomputes PnL. The zero value uses LastLeg.
type Engine struct {
	StructureTick StructureTickPolicy
	now           func() time.Time
}

// NewEngine returns an engine with the given structure tick policy.
func NewEngine(policy StructureTickPolicy) *Engine {
	return &Engine{StructureTick: policy}
}

// Recompute values every position. A missing instrument or leg degrades that
// row to PnL 0 and never aborts the pass. Neither input is modified.
func (e *Engine) Recompute(lookup Lookup, positions []models.Position) models.PnLReport {
	report := models.PnLReport{
		Rows:       make([]models.PnLRow, 0, len(positions)),
		ComputedAt: e.clock(),
	}
	if b, ok := lookup.(interface{ BuiltAt() time.Time }); ok {
		report.CatalogAt = b.BuiltAt()
	}

	for _, p := range positions {
		var row models.PnLRow
		if p.IsStructure() {
			row = e.structureRow(lookup, p)
		} else {
			row = simpleRow(lookup, p)
		}
		report.TotalPnL += row.PnL
		report.Rows = append(report.Rows, row)
	}
	return report
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now().UTC()
}

func baseRow(p models.Position) models.PnLRow {
	return models.PnLRow{
		PositionID: p.ID,
		Label:      p.Label(),
		Lots:       p.Lots,
		EntryPrice: p.EntryPrice,
	}
}

func simpleRow(lookup Lookup, p models.Position) models.PnLRow {
	row := baseRow(p)
	rec, ok := lookup.Lookup(p.Instrument)
	if !ok {
		row.Display = NotAvailable
		return row
	}
	row.Valid = true
	row.LivePrice = rec.Price
	row.TickValue = effectiveTickValue(p, rec.TickValue)
	row.Diff = row.LivePrice - row.EntryPrice
	row.PnL = row.Diff * row.Lots * row.TickValue
	row.Display = FormatMoney(row.PnL)
	return row
}

func (e *Engine) structureRow(lookup Lookup, p models.Position) models.PnLRow {
	row := baseRow(p)
	row.Valid = true

	var (
		live     float64
		tick     float64
		haveTick bool
		parts    = make([]string, 0, len(p.Legs))
	)
	for _, leg := range p.Legs {
		q := models.LegQuote{Instrument: leg.Instrument, Ratio: leg.Ratio, Display: NotAvailable}
		rec, ok := lookup.Lookup(leg.Instrument)
		if !ok {
			row.Valid = false
		} else {
			q.Found = true
			q.Price = rec.Price
			q.Display = FormatPrice(rec.Price)
			live += leg.Ratio * rec.Price
			if e.StructureTick == UniformLegs && haveTick && rec.TickValue != tick {
				row.Valid = false
			}
			tick = rec.TickValue
			haveTick = true
		}
		row.Legs = append(row.Legs, q)
		parts = append(parts, fmt.Sprintf("%s %s", leg.Instrument, q.Display))
	}

	row.LivePrice = live
	row.TickValue = effectiveTickValue(p, tick)
	row.Diff = row.LivePrice - row.EntryPrice
	if row.Valid {
		row.PnL = row.Diff * row.Lots * row.TickValue
	}
	row.Display = strings.Join(parts, " | ") + " = " + FormatMoney(row.PnL)
	return row
}

func effectiveTickValue(p models.Position, catalogValue float64) float64 {
	if p.TickValueOverride != nil && *p.TickValueOverride != 0 {
		return *p.TickValueOverride
	}
	return catalogValue
}

// FormatPrice renders a price with four decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatMoney renders v as "$1,234.56" (negative values as "-$1,234.56").
func FormatMoney(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}
