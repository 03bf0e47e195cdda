package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/ledger"
	"github.com/guttosm/dappulse/internal/pnl"
)

// ErrPositionNotFound means the position id is not in the session ledger.
var ErrPositionNotFound = errors.New("position not found")

// PortfolioService manages per-session ledgers and values them.
type PortfolioService interface {
	CreateSession() string
	DeleteSession(sid string) error
	SweepSessions() int
	Positions(sid string) ([]models.Position, error)
	AddPosition(sid string, spec models.PositionSpec, entryPrice *float64) (models.Position, error)
	RemovePosition(sid string, id int64) error
	ClearPositions(sid string) (int, error)
	PnL(sid string) (models.PnLReport, error)
	Subscribe() (<-chan struct{}, func())
}

type portfolioService struct {
	store    *catalog.Store
	registry *ledger.Registry
	engine   *pnl.Engine
}

// NewPortfolioService wires the catalog store, the session registry and the
// PnL engine.
func NewPortfolioService(store *catalog.Store, registry *ledger.Registry, engine *pnl.Engine) PortfolioService {
	if engine == nil {
		engine = pnl.NewEngine(pnl.LastLeg)
	}
	return &portfolioService{store: store, registry: registry, engine: engine}
}

func (s *portfolioService) CreateSession() string {
	return s.registry.Create()
}

func (s *portfolioService) DeleteSession(sid string) error {
	if !s.registry.Delete(sid) {
		return ledger.ErrSessionNotFound
	}
	return nil
}

func (s *portfolioService) SweepSessions() int {
	return s.registry.Sweep()
}

func (s *portfolioService) Positions(sid string) ([]models.Position, error) {
	l, err := s.registry.Ledger(sid)
	if err != nil {
		return nil, err
	}
	return l.List(), nil
}

// AddPosition opens a position. A nil entryPrice takes the current live
// price of the instrument (or structure), which must then be in the catalog.
func (s *portfolioService) AddPosition(sid string, spec models.PositionSpec, entryPrice *float64) (models.Position, error) {
	l, err := s.registry.Ledger(sid)
	if err != nil {
		return models.Position{}, err
	}

	if entryPrice != nil {
		spec.EntryPrice = *entryPrice
	} else {
		live, err := s.livePrice(spec)
		if err != nil {
			return models.Position{}, err
		}
		spec.EntryPrice = live
	}

	id, err := l.Add(spec)
	if err != nil {
		return models.Position{}, err
	}
	p, _ := l.Get(id)
	return p, nil
}

func (s *portfolioService) livePrice(spec models.PositionSpec) (float64, error) {
	probe := models.Position{Instrument: strings.TrimSpace(spec.Instrument)}
	for _, leg := range spec.Legs {
		probe.Legs = append(probe.Legs, models.Leg{Instrument: strings.TrimSpace(leg.Instrument), Ratio: leg.Ratio})
	}
	if probe.Instrument == "" && len(probe.Legs) == 0 {
		return 0, fmt.Errorf("%w: instrument or legs required", ledger.ErrInvalidPosition)
	}
	report := s.engine.Recompute(s.store.Catalog(), []models.Position{probe})
	row := report.Rows[0]
	if !row.Valid {
		return 0, fmt.Errorf("%w: no live price for %s", ErrInstrumentNotFound, probe.Label())
	}
	return row.LivePrice, nil
}

func (s *portfolioService) RemovePosition(sid string, id int64) error {
	l, err := s.registry.Ledger(sid)
	if err != nil {
		return err
	}
	if !l.Remove(id) {
		return fmt.Errorf("%w: %d", ErrPositionNotFound, id)
	}
	return nil
}

func (s *portfolioService) ClearPositions(sid string) (int, error) {
	l, err := s.registry.Ledger(sid)
	if err != nil {
		return 0, err
	}
	return l.Clear(), nil
}

func (s *portfolioService) PnL(sid string) (models.PnLReport, error) {
	l, err := s.registry.Ledger(sid)
	if err != nil {
		return models.PnLReport{}, err
	}
	return s.engine.Recompute(s.store.Catalog(), l.List()), nil
}

// Subscribe signals after every catalog swap.
func (s *portfolioService) Subscribe() (<-chan struct{}, func()) {
	return s.store.Subscribe()
}
