package ingestion

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/idgen"
	"github.com/guttosm/dappulse/internal/logger"
	"github.com/guttosm/dappulse/internal/storage"
	"github.com/guttosm/dappulse/internal/workbook"
)

// Error kinds reported in RefreshStatus.ErrorKind.
const (
	ErrorKindFetch  = "fetch_unavailable"
	ErrorKindHeader = "header_not_found"
	ErrorKindParse  = "parse_failed"
)

// ModeStatic is the only source mode: the workbook is read from disk.
const ModeStatic = "static"

// PipelineConfig wires a Pipeline.
//
// Fields:
//   - Source: where the market grid comes from (usually a *workbook.Source).
//   - ProfitSource: optional, reads ProfitSheet; give it its own breaker so a
//     missing Profit sheet never trips the market fetch.
//   - Region / ProfitRegion: zero values select MainRegion / ProfitRegion.
//   - Store: receives every pass.
//   - Archive: optional; successful passes are written to it.
type PipelineConfig struct {
	Source       workbook.Fetcher
	ProfitSource workbook.Fetcher
	Sheet        string
	ProfitSheet  string
	Region       workbook.Region
	ProfitRegion workbook.Region
	Options      Options
	Store        *catalog.Store
	Archive      storage.SnapshotRepository
}

// Pipeline runs refresh passes: fetch, parse, swap the catalog, archive.
// Concurrent Run calls share one pass.
type Pipeline struct {
	cfg    PipelineConfig
	group  singleflight.Group
	profit atomic.Pointer[workbook.Grid]
}

// NewPipeline returns a pipeline over cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Region == (workbook.Region{}) {
		cfg.Region = workbook.MainRegion
	}
	if cfg.ProfitRegion == (workbook.Region{}) {
		cfg.ProfitRegion = workbook.ProfitRegion
	}
	if cfg.Store == nil {
		cfg.Store = catalog.NewStore(true)
	}
	return &Pipeline{cfg: cfg}
}

// Store returns the catalog store the pipeline feeds.
func (p *Pipeline) Store() *catalog.Store { return p.cfg.Store }

// Profit returns the Profit sheet grid from the last pass that read it.
func (p *Pipeline) Profit() (workbook.Grid, bool) {
	g := p.profit.Load()
	if g == nil {
		return nil, false
	}
	return *g, true
}

// Run performs one refresh pass and returns its status. It never fails:
// fetch and header problems are reported in the status and the store applies
// its retain policy.
func (p *Pipeline) Run(ctx context.Context) models.RefreshStatus {
	v, _, shared := p.group.Do("refresh", func() (interface{}, error) {
		return p.run(ctx), nil
	})
	if shared {
		logger.L().Debug().Msg("refresh joined an in-flight pass")
	}
	return v.(models.RefreshStatus)
}

func (p *Pipeline) run(ctx context.Context) models.RefreshStatus {
	log := logger.With("pipeline")
	start := time.Now()
	status := models.RefreshStatus{
		Source:    p.cfg.Source.Describe(),
		Mode:      ModeStatic,
		HeaderRow: -1,
		FetchedAt: start.UTC(),
	}

	grid, err := p.fetch(ctx)
	if err != nil {
		status.Message = err.Error()
		status.ErrorKind = ErrorKindFetch
		status.Elapsed = time.Since(start).String()
		snap := p.cfg.Store.Apply(nil, status)
		ev := log.Warn().Err(err).Str("source", status.Source).Bool("retained", snap.Status.Retained)
		if b, ok := p.cfg.Source.(interface{ State() string }); ok {
			ev = ev.Str("breaker", b.State())
		}
		ev.Msg("refresh fetch failed")
		return snap.Status
	}

	res := ParseDetailed(grid, p.cfg.Options)
	status.Message = res.Diagnostic
	status.HeaderRow = res.HeaderRow
	status.Columns = res.Columns
	status.Rows = res.DataRows
	status.Records = res.Catalog.Len()
	status.ZeroTickValues = len(res.ZeroTick)

	if res.Err != nil {
		status.ErrorKind = ErrorKindParse
		if errors.Is(res.Err, ErrHeaderNotFound) {
			status.ErrorKind = ErrorKindHeader
		}
		status.Elapsed = time.Since(start).String()
		snap := p.cfg.Store.Apply(nil, status)
		log.Warn().Err(res.Err).Str("source", status.Source).Bool("retained", snap.Status.Retained).Msg("refresh parse failed")
		return snap.Status
	}

	status.SnapshotID = idgen.ULIDAt(start)
	if p.cfg.Archive != nil && len(res.Records) > 0 {
		if err := p.cfg.Archive.InsertSnapshot(ctx, status.SnapshotID, status.FetchedAt, res.Catalog.Records()); err != nil {
			log.Error().Err(err).Str("snapshot_id", status.SnapshotID).Msg("archive write failed")
		}
	}

	status.Elapsed = time.Since(start).String()
	snap := p.cfg.Store.Apply(res.Catalog, status)

	ev := log.Info().
		Str("source", status.Source).
		Int("header_row", status.HeaderRow).
		Int("rows", status.Rows).
		Int("records", status.Records).
		Int("duplicates", res.Catalog.Duplicates()).
		Str("snapshot_id", status.SnapshotID).
		Str("elapsed", status.Elapsed)
	if res.Columns != nil && len(res.Columns.Fallbacks) > 0 {
		ev = ev.Strs("fallbacks", res.Columns.Fallbacks)
	}
	ev.Msg("refresh done")
	if len(res.ZeroTick) > 0 {
		log.Warn().Strs("instruments", res.ZeroTick).Msg("outrights with zero tick value, PnL will be 0 without an override")
	}
	return snap.Status
}

// fetch reads the market sheet and, when configured, the Profit sheet in
// parallel. Only the market sheet decides the outcome.
func (p *Pipeline) fetch(ctx context.Context) (workbook.Grid, error) {
	var main workbook.Grid
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		grid, err := p.cfg.Source.Fetch(gctx, p.cfg.Sheet, p.cfg.Region)
		if err != nil {
			return err
		}
		main = grid
		return nil
	})
	if p.cfg.ProfitSource != nil && p.cfg.ProfitSheet != "" {
		g.Go(func() error {
			grid, err := p.cfg.ProfitSource.Fetch(gctx, p.cfg.ProfitSheet, p.cfg.ProfitRegion)
			if err != nil {
				logger.L().Debug().Err(err).Str("sheet", p.cfg.ProfitSheet).Msg("profit sheet unavailable")
				return nil
			}
			p.profit.Store(&grid)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return main, nil
}
