package models

import "time"

// LegQuote is the live pricing of a single structure leg.
// Found is false when the leg instrument is missing from the catalog;
// Display then reads "N/A".
type LegQuote struct {
	Instrument string  `json:"instrument"`
	Ratio      float64 `json:"ratio"`
	Price      float64 `json:"price"`
	Found      bool    `json:"found"`
	Display    string  `json:"display"`
}

// PnLRow is the derived, per-refresh valuation of one position.
//
// Valid is false when the instrument (or any leg) was not in the catalog;
// such rows carry PnL 0 and are still reported.
type PnLRow struct {
	PositionID int64      `json:"position_id"`
	Label      string     `json:"label"`
	Lots       float64    `json:"lots"`
	EntryPrice float64    `json:"entry_price"`
	LivePrice  float64    `json:"live_price"`
	Diff       float64    `json:"diff"`
	TickValue  float64    `json:"tick_value"`
	PnL        float64    `json:"pnl"`
	Valid      bool       `json:"valid"`
	Legs       []LegQuote `json:"legs,omitempty"`
	Display    string     `json:"display"`
}

// PnLReport is the result of one recompute pass.
type PnLReport struct {
	Rows       []PnLRow  `json:"rows"`
	TotalPnL   float64   `json:"total_pnl"`
	CatalogAt  time.Time `json:"catalog_at"`
	ComputedAt time.Time `json:"computed_at"`
}
