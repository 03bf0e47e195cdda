package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dappulse/config"
	"github.com/guttosm/dappulse/internal/api"
	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/ingestion"
	"github.com/guttosm/dappulse/internal/ledger"
	"github.com/guttosm/dappulse/internal/logger"
	"github.com/guttosm/dappulse/internal/pnl"
	"github.com/guttosm/dappulse/internal/service"
	"github.com/guttosm/dappulse/internal/storage"
	"github.com/guttosm/dappulse/internal/workbook"
)

// NewPipeline builds the refresh pipeline described by cfg.
//
// Parameters:
//   - cfg (config.Config): workbook location, region, parser policies and retain mode.
//   - archive (storage.SnapshotRepository): optional, receives every successful catalog.
//
// Returns:
//   - *ingestion.Pipeline: ready to Run; nothing is read until then.
//   - error: when a policy name is not recognized.
func NewPipeline(cfg config.Config, archive storage.SnapshotRepository) (*ingestion.Pipeline, error) {
	dupes, err := catalog.ParseDuplicatePolicy(cfg.Policy.Duplicates)
	if err != nil {
		return nil, err
	}

	fetcher := workbook.NewFileFetcher(cfg.Workbook.Path)
	fetcher.PrimarySheet = cfg.Workbook.Sheet

	return ingestion.NewPipeline(ingestion.PipelineConfig{
		Source:       workbook.NewSource(fetcher, cfg.Workbook.FetchTimeout, workbook.DefaultBreakerSettings),
		ProfitSource: workbook.NewSource(fetcher, cfg.Workbook.FetchTimeout, workbook.DefaultBreakerSettings),
		Sheet:        cfg.Workbook.Sheet,
		ProfitSheet:  cfg.Workbook.ProfitSheet,
		Region:       workbook.Region{Rows: cfg.Workbook.MaxRows, Cols: cfg.Workbook.MaxCols},
		Options: ingestion.Options{
			ScanLimit:  cfg.Workbook.HeaderScanLimit,
			Duplicates: dupes,
			KindTickValue: ingestion.KindTickValue{
				Spread: cfg.Policy.SpreadTickValue,
				Fly:    cfg.Policy.FlyTickValue,
			},
		},
		Store:   catalog.NewStore(cfg.Refresh.RetainLastGood),
		Archive: archive,
	}), nil
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL when the snapshot archive is enabled.
//   - Builds the refresh pipeline and runs the first pass synchronously.
//   - Wires the market and portfolio services, the handler and the router.
//   - Registers health and readiness probes.
//   - Starts the background refresher (ticker, file watcher, session sweep).
//   - Provides a cleanup function that stops the refresher and closes the DB.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig
	log := logger.With("app")

	var (
		db      *sql.DB
		archive storage.SnapshotRepository
	)
	if cfg.Archive.Enabled {
		var err error
		// indirection for unit testing
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		archive = storage.NewSnapshotRepository(db)
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	pipeline, err := NewPipeline(cfg, archive)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	tickPolicy, err := pnl.ParseStructureTickPolicy(cfg.Policy.StructureTick)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// First pass before serving; a failure is reported in /status.
	st := pipeline.Run(context.Background())
	log.Info().Str("source", st.Source).Str("message", st.Message).Int("records", st.Records).Msg("initial refresh")

	registry := ledger.NewRegistry(cfg.Session.TTL)
	market := service.NewMarketService(pipeline, archive)
	portfolio := service.NewPortfolioService(pipeline.Store(), registry, pnl.NewEngine(tickPolicy))

	handler := api.NewHandler(market, portfolio)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	var ping func() error
	if db != nil {
		ping = db.Ping
	}
	api.NewHealthHandler(ping, pipeline.Store().Loaded).Register(router)

	refresher := NewRefresher(RefresherConfig{
		Pipeline:  pipeline,
		Interval:  cfg.Refresh.Interval,
		WatchPath: watchPath(cfg),
		Sweep:     portfolio.SweepSessions,
		Archive:   archive,
		Retention: cfg.Archive.Retention,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := refresher.Run(ctx); err != nil {
			log.Error().Err(err).Msg("refresher stopped")
		}
	}()

	cleanup := func() {
		cancel()
		<-done
		closeDB()
	}

	return router, cleanup, nil
}

func watchPath(cfg config.Config) string {
	if !cfg.Refresh.Watch {
		return ""
	}
	return cfg.Workbook.Path
}
