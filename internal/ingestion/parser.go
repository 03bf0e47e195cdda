package ingestion

import (
	"errors"
	"fmt"

	"github.com/guttosm/dappulse/internal/catalog"
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/workbook"
)

// SuccessMessage is the diagnostic of a pass that produced a catalog.
const SuccessMessage = "Success"

// Options tunes the parser. The zero value is usable and matches the
// production layout.
//
// Fields:
//   - ScanLimit: rows searched for the header (5..15, 0 = 15).
//   - Duplicates: which record survives a repeated instrument name.
//   - KindTickValue: fixed tick values for spreads and flies (zero fields
//     fall back to DefaultTickValue).
type Options struct {
	ScanLimit     int
	Duplicates    catalog.DuplicatePolicy
	KindTickValue KindTickValue
}

func (o Options) kindTickValue() KindTickValue {
	kt := o.KindTickValue
	if kt.Spread == 0 {
		kt.Spread = DefaultTickValue
	}
	if kt.Fly == 0 {
		kt.Fly = DefaultTickValue
	}
	return kt
}

// Result is the detailed outcome of one parse pass.
type Result struct {
	Catalog    *catalog.Catalog
	Records    []models.MarketRecord
	HeaderRow  int
	Columns    *models.ColumnMap
	DataRows   int
	Diagnostic string
	Err        error
	// ZeroTick lists outrights of the catalog whose tick value read as 0.
	ZeroTick []string
}

// Parse normalizes a raw market grid into a catalog. It never fails: any
// problem yields an empty catalog and a human readable diagnostic.
func Parse(grid workbook.Grid, opts Options) (*catalog.Catalog, string) {
	res := ParseDetailed(grid, opts)
	return res.Catalog, res.Diagnostic
}

// ParseDetailed is Parse with the intermediate results exposed. Err is
// ErrHeaderNotFound when the header row is missing.
func ParseDetailed(grid workbook.Grid, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Catalog:    catalog.Empty(),
				HeaderRow:  -1,
				Diagnostic: fmt.Sprintf("parse failed: %v", r),
				Err:        fmt.Errorf("parse panic: %v", r),
			}
		}
	}()

	headerRow, err := LocateHeader(grid, opts.ScanLimit)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrHeaderNotFound) {
			msg = HeaderNotFoundMessage
		}
		return Result{Catalog: catalog.Empty(), HeaderRow: -1, Diagnostic: msg, Err: err}
	}

	cols := MapColumns(grid.Row(headerRow))
	data := grid[headerRow+1:]
	records := NormalizeRows(data, cols, grid.Width(), opts.kindTickValue())
	cat := catalog.New(records, opts.Duplicates)

	return Result{
		Catalog:    cat,
		Records:    records,
		HeaderRow:  headerRow,
		Columns:    &cols,
		DataRows:   len(data),
		Diagnostic: SuccessMessage,
		ZeroTick:   zeroTickOutrights(cat),
	}
}

func zeroTickOutrights(c *catalog.Catalog) []string {
	var names []string
	for _, r := range c.ByKind(models.KindOutright) {
		if r.TickValue == 0 {
			names = append(names, r.Instrument)
		}
	}
	return names
}
