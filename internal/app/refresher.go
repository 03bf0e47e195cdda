package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/logger"
	"github.com/guttosm/dappulse/internal/storage"
)

const (
	watchDebounce  = 250 * time.Millisecond
	sweepEvery     = time.Minute
	retentionEvery = time.Hour
)

// Runner runs one refresh pass.
type Runner interface {
	Run(ctx context.Context) models.RefreshStatus
}

// RefresherConfig wires a Refresher. Zero values disable the matching loop.
//
// Fields:
//   - Pipeline: the refresh pass to trigger.
//   - Interval: periodic refresh.
//   - WatchPath: workbook file; a write, create or rename of it triggers a refresh.
//   - Sweep: drops idle sessions, called every minute.
//   - Archive / Retention: snapshots older than Retention are deleted hourly.
type RefresherConfig struct {
	Pipeline  Runner
	Interval  time.Duration
	WatchPath string
	Sweep     func() int
	Archive   storage.SnapshotRepository
	Retention time.Duration
}

// Refresher drives the background loops of the service.
type Refresher struct {
	cfg RefresherConfig
}

// NewRefresher returns a refresher over cfg.
func NewRefresher(cfg RefresherConfig) *Refresher {
	return &Refresher{cfg: cfg}
}

// Run blocks until ctx is cancelled. It fails only when no file watcher can be created.
func (r *Refresher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if r.cfg.Interval > 0 {
		g.Go(func() error { return r.tick(ctx) })
	}
	if r.cfg.WatchPath != "" {
		g.Go(func() error { return r.watch(ctx) })
	}
	if r.cfg.Sweep != nil {
		g.Go(func() error { return r.sweep(ctx) })
	}
	if r.cfg.Archive != nil && r.cfg.Retention > 0 {
		g.Go(func() error { return r.prune(ctx) })
	}

	return g.Wait()
}

func (r *Refresher) tick(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.refresh(ctx, "interval")
		}
	}
}

// watch observes the workbook's directory so that editors which replace the
// file (write to temp, rename over) keep triggering events.
func (r *Refresher) watch(ctx context.Context) error {
	log := logger.With("refresher")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// A missing directory only disables watching; the other loops keep running.
	target := filepath.Clean(r.cfg.WatchPath)
	if err := w.Add(filepath.Dir(target)); err != nil {
		log.Warn().Err(err).Str("dir", filepath.Dir(target)).Msg("workbook watch disabled")
		return nil
	}
	log.Info().Str("path", target).Msg("watching workbook")

	var (
		pending *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(watchDebounce)
			} else {
				pending.Reset(watchDebounce)
			}
			fire = pending.C
		case <-fire:
			fire = nil
			r.refresh(ctx, "file_changed")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (r *Refresher) sweep(ctx context.Context) error {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.cfg.Sweep(); n > 0 {
				logger.With("refresher").Info().Int("sessions", n).Msg("expired idle sessions")
			}
		}
	}
}

func (r *Refresher) prune(ctx context.Context) error {
	ticker := time.NewTicker(retentionEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-r.cfg.Retention)
			n, err := r.cfg.Archive.DeleteSnapshotsBefore(ctx, cutoff)
			if err != nil {
				logger.With("refresher").Warn().Err(err).Msg("snapshot retention failed")
				continue
			}
			logger.With("refresher").Debug().Int64("rows", n).Time("cutoff", cutoff).Msg("snapshot retention")
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, trigger string) {
	st := r.cfg.Pipeline.Run(ctx)
	logger.With("refresher").Debug().
		Str("trigger", trigger).
		Str("message", st.Message).
		Int("records", st.Records).
		Msg("refresh triggered")
}
