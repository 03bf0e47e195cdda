package models

import "time"

// ColumnMap is the resolved set of column indices of the market sheet.
// Fallbacks lists the fields that were not found by keyword and were set
// from the fixed layout instead.
type ColumnMap struct {
	OutrightName      int      `json:"outright_name" yaml:"outright_name"`
	OutrightLast      int      `json:"outright_last" yaml:"outright_last"`
	OutrightTickValue int      `json:"outright_tick_value" yaml:"outright_tick_value"`
	SpreadName        int      `json:"spread_name" yaml:"spread_name"`
	SpreadLast        int      `json:"spread_last" yaml:"spread_last"`
	FlyName           int      `json:"fly_name" yaml:"fly_name"`
	FlyLast           int      `json:"fly_last" yaml:"fly_last"`
	Fallbacks         []string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
}

// RefreshStatus describes the outcome of the most recent refresh pass.
//
// Message is human readable ("Success", "Could not find 'Outrights' header row.",
// fetch errors). ErrorKind is one of "", "fetch_unavailable", "header_not_found".
// Retained is true when a failed pass kept the previous catalog in service.
// ZeroTickValues counts outrights whose tick value cell was blank or unreadable;
// their PnL is 0 unless the position overrides the tick value.
type RefreshStatus struct {
	Source         string     `json:"source" yaml:"source"`
	Mode           string     `json:"mode" yaml:"mode"`
	Message        string     `json:"message" yaml:"message"`
	ErrorKind      string     `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Records        int        `json:"records" yaml:"records"`
	Rows           int        `json:"rows" yaml:"rows"`
	HeaderRow      int        `json:"header_row" yaml:"header_row"`
	Columns        *ColumnMap `json:"columns,omitempty" yaml:"columns,omitempty"`
	Retained       bool       `json:"retained" yaml:"retained"`
	ZeroTickValues int        `json:"zero_tick_values,omitempty" yaml:"zero_tick_values,omitempty"`
	SnapshotID     string     `json:"snapshot_id,omitempty" yaml:"snapshot_id,omitempty"`
	FetchedAt      time.Time  `json:"fetched_at" yaml:"fetched_at"`
	Elapsed        string     `json:"elapsed" yaml:"elapsed"`
}

// OK reports whether the pass produced a fresh catalog.
func (s RefreshStatus) OK() bool {
	return s.ErrorKind == ""
}

// PricePoint is one archived observation of an instrument.
type PricePoint struct {
	SnapshotID string    `json:"snapshot_id" yaml:"snapshot_id"`
	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`
	Instrument string    `json:"instrument" yaml:"instrument"`
	Kind       Kind      `json:"type" yaml:"type"`
	Price      float64   `json:"price" yaml:"price"`
	TickValue  float64   `json:"tick_value" yaml:"tick_value"`
}
