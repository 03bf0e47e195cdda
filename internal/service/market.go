package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/storage"
	"github.com/guttosm/dappulse/internal/workbook"
)

var (
	// ErrInstrumentNotFound means the name is not in the current catalog.
	ErrInstrumentNotFound = errors.New("instrument not found")
	// ErrArchiveDisabled is returned by History when no archive is configured.
	ErrArchiveDisabled = errors.New("snapshot archive disabled")
	// ErrProfitUnavailable means no Profit sheet has been read yet.
	ErrProfitUnavailable = errors.New("profit sheet unavailable")
)

// Refresher is the refresh pipeline as seen by the services.
type Refresher interface {
	Run(ctx context.Context) models.RefreshStatus
	Store() *catalog.Store
	Profit() (workbook.Grid, bool)
}

// MarketService exposes the instrument catalog and refresh control.
type MarketService interface {
	Refresh(ctx context.Context) models.RefreshStatus
	Status() models.RefreshStatus
	Market(kind string) ([]models.MarketRecord, error)
	Instrument(name string) (models.MarketRecord, error)
	Instruments(kind string) ([]string, error)
	ProfitSheet() ([][]string, error)
	History(ctx context.Context, instrument string, since *time.Time, limit int) ([]models.PricePoint, error)
}

type marketService struct {
	pipeline Refresher
	archive  storage.SnapshotRepository
}

// NewMarketService builds the market service. archive may be nil.
func NewMarketService(pipeline Refresher, archive storage.SnapshotRepository) MarketService {
	return &marketService{pipeline: pipeline, archive: archive}
}

func (s *marketService) Refresh(ctx context.Context) models.RefreshStatus {
	return s.pipeline.Run(ctx)
}

func (s *marketService) Status() models.RefreshStatus {
	return s.pipeline.Store().Current().Status
}

func (s *marketService) Market(kind string) ([]models.MarketRecord, error) {
	cat := s.pipeline.Store().Catalog()
	if strings.TrimSpace(kind) == "" {
		return cat.Records(), nil
	}
	k, err := models.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return cat.ByKind(k), nil
}

func (s *marketService) Instrument(name string) (models.MarketRecord, error) {
	rec, ok := s.pipeline.Store().Catalog().Lookup(strings.TrimSpace(name))
	if !ok {
		return models.MarketRecord{}, fmt.Errorf("%w: %s", ErrInstrumentNotFound, name)
	}
	return rec, nil
}

func (s *marketService) Instruments(kind string) ([]string, error) {
	var k models.Kind
	if strings.TrimSpace(kind) != "" {
		var err error
		if k, err = models.ParseKind(kind); err != nil {
			return nil, err
		}
	}
	return s.pipeline.Store().Catalog().Instruments(k), nil
}

func (s *marketService) ProfitSheet() ([][]string, error) {
	g, ok := s.pipeline.Profit()
	if !ok {
		return nil, ErrProfitUnavailable
	}
	return g.Strings(), nil
}

func (s *marketService) History(ctx context.Context, instrument string, since *time.Time, limit int) ([]models.PricePoint, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.GetPriceHistory(ctx, strings.TrimSpace(instrument), since, limit)
}
