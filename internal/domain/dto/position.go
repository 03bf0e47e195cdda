package dto

import (
	"time"

	"github.com/guttosm/dappulse/internal/domain/models"
)

// LegRequest is one leg of a structure position.
type LegRequest struct {
	Instrument string  `json:"instrument" binding:"required" example:"CLF6"`
	Ratio      float64 `json:"ratio" binding:"required" example:"-2"`
}

// PositionRequest is the body of POST /api/v1/sessions/{sid}/positions.
//
// Either Instrument (simple position) or Legs (structure) must be set.
// EntryPrice defaults to the current live price when omitted.
// TickValueOverride replaces the catalog tick value when non-zero.
type PositionRequest struct {
	Name              string       `json:"name,omitempty" example:"CL Z5/F6/G6 fly"`
	Instrument        string       `json:"instrument,omitempty" example:"CLZ5"`
	Legs              []LegRequest `json:"legs,omitempty" binding:"omitempty,dive"`
	Lots              float64      `json:"lots" example:"10"`
	EntryPrice        *float64     `json:"entry_price,omitempty" example:"69.0"`
	TickValueOverride *float64     `json:"tick_value_override,omitempty" example:"100"`
}

// Spec converts the request into a ledger position spec.
func (r PositionRequest) Spec() models.PositionSpec {
	spec := models.PositionSpec{
		Name:              r.Name,
		Instrument:        r.Instrument,
		Lots:              r.Lots,
		TickValueOverride: r.TickValueOverride,
	}
	for _, l := range r.Legs {
		spec.Legs = append(spec.Legs, models.Leg{Instrument: l.Instrument, Ratio: l.Ratio})
	}
	return spec
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string    `json:"session_id" example:"01JABCDE0123456789ABCDEFGH"`
	CreatedAt time.Time `json:"created_at"`
}

// PositionsResponse lists the open positions of a session.
type PositionsResponse struct {
	SessionID string            `json:"session_id"`
	Positions []models.Position `json:"positions"`
}

// ClearResponse reports how many positions were removed.
type ClearResponse struct {
	Removed int `json:"removed" example:"3"`
}

// MarketResponse lists catalog records.
type MarketResponse struct {
	Count     int                   `json:"count" example:"42"`
	CatalogAt time.Time             `json:"catalog_at"`
	Records   []models.MarketRecord `json:"records"`
}

// InstrumentsResponse is a sorted, de-duplicated pick-list.
type InstrumentsResponse struct {
	Type        string   `json:"type,omitempty" example:"Outright"`
	Instruments []string `json:"instruments"`
}

// ProfitResponse is the raw Profit sheet.
type ProfitResponse struct {
	Rows [][]string `json:"rows"`
}

// HistoryResponse lists archived prices of one instrument, newest first.
type HistoryResponse struct {
	Instrument string              `json:"instrument" example:"CLZ5"`
	Points     []models.PricePoint `json:"points"`
}
