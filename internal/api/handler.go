package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dappulse/internal/domain/dto"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/ledger"
	"github.com/guttosm/dappulse/internal/middleware"
	"github.com/guttosm/dappulse/internal/service"
)

const (
	defaultHistoryLimit = 500
	maxHistoryLimit     = 5000
)

// Handler provides HTTP handlers for the market and portfolio endpoints.
//
// Responsibilities:
//   - Validate incoming path, query and body parameters
//   - Call the market and portfolio services
//   - Translate service results into response DTOs
//   - Map service errors onto HTTP status codes
type Handler struct {
	market    service.MarketService
	portfolio service.PortfolioService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - market (service.MarketService): catalog queries and refresh control.
//   - portfolio (service.PortfolioService): sessions, positions and PnL.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(market service.MarketService, portfolio service.PortfolioService) *Handler {
	return &Handler{market: market, portfolio: portfolio}
}

// GetStatus godoc
// @Summary      Last refresh status
// @Description  Outcome of the most recent workbook refresh (source, records, header row, errors)
// @Tags         market
// @Produce      json
// @Success      200  {object}  models.RefreshStatus
// @Router       /api/v1/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Status())
}

// Refresh godoc
// @Summary      Reload the workbook
// @Description  Runs one refresh pass now. Failures are reported in the status body.
// @Tags         market
// @Produce      json
// @Success      200  {object}  models.RefreshStatus
// @Router       /api/v1/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Refresh(c.Request.Context()))
}

// GetMarket godoc
// @Summary      List catalog records
// @Description  Instruments of the current catalog in sheet order, optionally filtered by type
// @Tags         market
// @Produce      json
// @Param        type  query     string  false  "Outright, Spread or Fly"  example(Outright)
// @Success      200   {object}  dto.MarketResponse
// @Failure      400   {object}  dto.ErrorResponse  "Unknown type"
// @Router       /api/v1/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	recs, err := h.market.Market(c.Query("type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarketResponse{
		Count:     len(recs),
		CatalogAt: h.market.Status().FetchedAt,
		Records:   recs,
	})
}

// GetInstrument godoc
// @Summary      One catalog record
// @Tags         market
// @Produce      json
// @Param        instrument  path      string  true  "Instrument name"  example(CLZ5)
// @Success      200         {object}  models.MarketRecord
// @Failure      404         {object}  dto.ErrorResponse  "Not Found"
// @Router       /api/v1/market/{instrument} [get]
func (h *Handler) GetInstrument(c *gin.Context) {
	rec, err := h.market.Instrument(c.Param("instrument"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetInstruments godoc
// @Summary      Instrument pick-list
// @Description  Sorted, unique instrument names, optionally filtered by type
// @Tags         market
// @Produce      json
// @Param        type  query     string  false  "Outright, Spread or Fly"
// @Success      200   {object}  dto.InstrumentsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/instruments [get]
func (h *Handler) GetInstruments(c *gin.Context) {
	kind := c.Query("type")
	names, err := h.market.Instruments(kind)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := dto.InstrumentsResponse{Instruments: names}
	if k, err := models.ParseKind(kind); err == nil {
		resp.Type = string(k)
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfit godoc
// @Summary      Profit sheet
// @Description  Raw cells of the Profit sheet (A1:Z50) from the last refresh
// @Tags         market
// @Produce      json
// @Success      200  {object}  dto.ProfitResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/v1/profit [get]
func (h *Handler) GetProfit(c *gin.Context) {
	rows, err := h.market.ProfitSheet()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfitResponse{Rows: rows})
}

// GetHistory godoc
// @Summary      Archived prices
// @Description  Price history of one instrument from the snapshot archive, newest first
// @Tags         market
// @Produce      json
// @Param        instrument  path      string  true   "Instrument name"
// @Param        since       query     string  false  "YYYY-MM-DD or RFC3339"  example(2025-10-01)
// @Param        limit       query     int     false  "Max points (default 500, max 5000)"
// @Success      200         {object}  dto.HistoryResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Failure      503         {object}  dto.ErrorResponse  "Archive disabled"
// @Router       /api/v1/history/{instrument} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	instrument := strings.TrimSpace(c.Param("instrument"))

	var since *time.Time
	if s := c.Query("since"); s != "" {
		t, err := parseSince(s)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid since, expected YYYY-MM-DD or RFC3339", err)
			return
		}
		since = &t
	}

	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.AbortWithError(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	points, err := h.market.History(c.Request.Context(), instrument, since, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if points == nil {
		points = []models.PricePoint{}
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Instrument: instrument, Points: points})
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// writeError maps service errors onto status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, models.ErrUnknownKind):
		status, msg = http.StatusBadRequest, "unknown instrument type"
	case errors.Is(err, ledger.ErrInvalidPosition):
		status, msg = http.StatusBadRequest, "invalid position"
	case errors.Is(err, service.ErrInstrumentNotFound):
		status, msg = http.StatusNotFound, "instrument not found"
	case errors.Is(err, ledger.ErrSessionNotFound):
		status, msg = http.StatusNotFound, "session not found"
	case errors.Is(err, service.ErrPositionNotFound):
		status, msg = http.StatusNotFound, "position not found"
	case errors.Is(err, service.ErrArchiveDisabled):
		status, msg = http.StatusServiceUnavailable, "snapshot archive disabled"
	case errors.Is(err, service.ErrProfitUnavailable):
		status, msg = http.StatusServiceUnavailable, "profit sheet unavailable"
	}
	middleware.AbortWithError(c, status, msg, err)
}
