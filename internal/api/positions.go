package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dappulse/internal/domain/dto"
	"github.com/guttosm/dappulse/internal/middleware"
)

// ─── Sessions ────────────────────────────────────────────────────────────────

// CreateSession godoc
// @Summary      Open a session
// @Description  Creates an isolated position ledger and returns its id
// @Tags         portfolio
// @Produce      json
// @Success      201  {object}  dto.SessionResponse
// @Router       /api/v1/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, dto.SessionResponse{
		SessionID: h.portfolio.CreateSession(),
		CreatedAt: time.Now().UTC(),
	})
}

// DeleteSession godoc
// @Summary      Close a session
// @Tags         portfolio
// @Param        sid  path  string  true  "Session id"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.portfolio.DeleteSession(c.Param("sid")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Positions ───────────────────────────────────────────────────────────────

// ListPositions godoc
// @Summary      Open positions
// @Tags         portfolio
// @Produce      json
// @Param        sid  path      string  true  "Session id"
// @Success      200  {object}  dto.PositionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid}/positions [get]
func (h *Handler) ListPositions(c *gin.Context) {
	sid := c.Param("sid")
	positions, err := h.portfolio.Positions(sid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PositionsResponse{SessionID: sid, Positions: positions})
}

// AddPosition godoc
// @Summary      Open a position
// @Description  Adds a simple or structure position. entry_price defaults to the live price.
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        sid   path      string               true  "Session id"
// @Param        body  body      dto.PositionRequest  true  "Position"
// @Success      201   {object}  models.Position
// @Failure      400   {object}  dto.ErrorResponse  "Invalid body"
// @Failure      404   {object}  dto.ErrorResponse  "Unknown session or no live price"
// @Router       /api/v1/sessions/{sid}/positions [post]
func (h *Handler) AddPosition(c *gin.Context) {
	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid position body", err)
		return
	}

	p, err := h.portfolio.AddPosition(c.Param("sid"), req.Spec(), req.EntryPrice)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RemovePosition godoc
// @Summary      Close a position
// @Tags         portfolio
// @Param        sid  path  string  true  "Session id"
// @Param        id   path  int     true  "Position id"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid}/positions/{id} [delete]
func (h *Handler) RemovePosition(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid position id", err)
		return
	}
	if err := h.portfolio.RemovePosition(c.Param("sid"), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearPositions godoc
// @Summary      Close every position
// @Tags         portfolio
// @Produce      json
// @Param        sid  path      string  true  "Session id"
// @Success      200  {object}  dto.ClearResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid}/positions [delete]
func (h *Handler) ClearPositions(c *gin.Context) {
	n, err := h.portfolio.ClearPositions(c.Param("sid"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClearResponse{Removed: n})
}

// ─── PnL ─────────────────────────────────────────────────────────────────────

// GetPnL godoc
// @Summary      Session PnL
// @Description  Values every position against the current catalog. Missing instruments report N/A and PnL 0.
// @Tags         portfolio
// @Produce      json
// @Param        sid  path      string  true  "Session id"
// @Success      200  {object}  models.PnLReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sessions/{sid}/pnl [get]
func (h *Handler) GetPnL(c *gin.Context) {
	report, err := h.portfolio.PnL(c.Param("sid"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
