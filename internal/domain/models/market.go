package models

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a market record by the sheet block it was read from.
type Kind string

const (
	KindOutright Kind = "Outright"
	KindSpread   Kind = "Spread"
	KindFly      Kind = "Fly"
)

// ErrUnknownKind is wrapped by ParseKind failures.
var ErrUnknownKind = errors.New("unknown instrument type")

// ParseKind resolves a user supplied kind name case-insensitively.
// "fly", "flies" and "butterfly" all map to KindFly.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outright", "outrights":
		return KindOutright, nil
	case "spread", "spreads":
		return KindSpread, nil
	case "fly", "flies", "butterfly":
		return KindFly, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// MarketRecord is one normalized instrument row from the market sheet.
//
// Fields:
//   - Instrument: trimmed, non-empty instrument name (e.g. "CLZ5").
//   - Kind: block the record came from.
//   - Price: last traded price, 0 when the cell could not be parsed.
//   - TickValue: currency value of one price unit per lot.
//
// swagger:model MarketRecord
type MarketRecord struct {
	Instrument string  `json:"instrument" yaml:"instrument" example:"CLZ5"`
	Kind       Kind    `json:"type" yaml:"type" example:"Outright"`
	Price      float64 `json:"price" yaml:"price" example:"70.5"`
	TickValue  float64 `json:"tick_value" yaml:"tick_value" example:"100"`
}
