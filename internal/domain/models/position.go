package models

import "time"

// Leg is one constituent of a multi-leg structure.
// Ratio is signed: a butterfly is +1 / -2 / +1.
type Leg struct {
	Instrument string  `json:"instrument" example:"CLZ5"`
	Ratio      float64 `json:"ratio" example:"1"`
}

// Position is a user entered trade held in a session ledger.
//
// A simple position sets Instrument and leaves Legs empty. A structure position
// sets Legs (and usually Name) and leaves Instrument empty.
//
// TickValueOverride is optional; nil or zero means "use the catalog tick value".
type Position struct {
	ID                int64     `json:"id" example:"17600000000000"`
	Name              string    `json:"name,omitempty" example:"CL Z5/F6/G6 fly"`
	Instrument        string    `json:"instrument,omitempty" example:"CLZ5"`
	Legs              []Leg     `json:"legs,omitempty"`
	Lots              float64   `json:"lots" example:"10"`
	EntryPrice        float64   `json:"entry_price" example:"69.0"`
	TickValueOverride *float64  `json:"tick_value_override,omitempty" example:"100"`
	CreatedAt         time.Time `json:"created_at"`
}

// IsStructure reports whether the position is priced from legs.
func (p Position) IsStructure() bool {
	return len(p.Legs) > 0
}

// Label is the display name of the position.
func (p Position) Label() string {
	if !p.IsStructure() {
		return p.Instrument
	}
	if p.Name != "" {
		return p.Name
	}
	label := ""
	for i, l := range p.Legs {
		if i > 0 {
			label += "/"
		}
		label += l.Instrument
	}
	return label
}

// PositionSpec is the input used to open a position.
type PositionSpec struct {
	Name              string
	Instrument        string
	Legs              []Leg
	Lots              float64
	EntryPrice        float64
	TickValueOverride *float64
}
