package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/dappulse/internal/middleware"
)

// RouterConfig carries the HTTP tuning knobs of NewRouter.
type RouterConfig struct {
	RateLimitRPS   float64       // Requests per second per client IP, <= 0 disables the limiter
	RateLimitBurst int           // Token bucket size
	RequestTimeout time.Duration // Per-request context deadline, <= 0 means 10s
}

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling (WebSocket upgrades are exempt).
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
//
// Parameters:
//   - handler (*Handler): The HTTP handler with business logic.
//   - cfg (RouterConfig): Rate limit and timeout settings.
//
// Returns:
//   - *gin.Engine: Configured Gin router.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// ─── Timeout ──────────────────────────────────
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	router.Use(func(c *gin.Context) {
		if c.IsWebsocket() {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatus)
		v1.POST("/refresh", handler.Refresh)
		v1.GET("/market", handler.GetMarket)
		v1.GET("/market/:instrument", handler.GetInstrument)
		v1.GET("/instruments", handler.GetInstruments)
		v1.GET("/profit", handler.GetProfit)
		v1.GET("/history/:instrument", handler.GetHistory)

		sessions := v1.Group("/sessions")
		sessions.POST("", handler.CreateSession)
		sessions.DELETE("/:sid", handler.DeleteSession)
		sessions.GET("/:sid/positions", handler.ListPositions)
		sessions.POST("/:sid/positions", handler.AddPosition)
		sessions.DELETE("/:sid/positions", handler.ClearPositions)
		sessions.DELETE("/:sid/positions/:id", handler.RemovePosition)
		sessions.GET("/:sid/pnl", handler.GetPnL)
		sessions.GET("/:sid/stream", handler.StreamPnL)
	}

	return router
}
