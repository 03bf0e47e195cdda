package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (catalog loaded and, when configured, the archive reachable).
type HealthHandler struct {
	dbPing func() error // Archive connectivity check, nil when the archive is disabled
	loaded func() bool  // Reports whether a catalog has been loaded
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - dbPing (func() error): Checks that the snapshot archive is reachable.
//     Typically db.Ping from *sql.DB. May be nil.
//   - loaded (func() bool): Reports whether the first successful refresh happened.
//     Typically catalog.Store.Loaded. May be nil.
//
// Returns:
//   - *HealthHandler: A new handler instance.
func NewHealthHandler(dbPing func() error, loaded func() bool) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, loaded: loaded}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 "ready"; 503 "loading" before the first catalog,
//     503 "degraded" when the archive does not answer.
func (h *HealthHandler) Register(r *gin.Engine) {
	// Liveness probe
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness probe
	// @Summary      Readiness probe
	// @Description  Ready once a catalog is loaded and the archive (if enabled) answers
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.loaded != nil && !h.loaded() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		if h.dbPing != nil && h.dbPing() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
