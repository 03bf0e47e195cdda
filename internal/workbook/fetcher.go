package workbook

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrFetchUnavailable marks every failure to obtain a raw grid: missing file,
// unreadable workbook, missing sheet, timeout or an open circuit.
var ErrFetchUnavailable = errors.New("workbook unavailable")

// Fetcher supplies raw sheet regions.
type Fetcher interface {
	Fetch(ctx context.Context, sheet string, region Region) (Grid, error)
	Describe() string
}

// FileFetcher reads a workbook from disk on every call.
//
// Supported formats, chosen by extension:
//   - .xlsx, .xlsm, .xltx: read with excelize; sheet selects the worksheet.
//   - .csv: a single table. A sibling file named "<base>_<sheet>.csv" is read
//     when it exists; otherwise the main file answers PrimarySheet (or any
//     sheet when PrimarySheet is empty).
type FileFetcher struct {
	Path         string
	PrimarySheet string
}

// NewFileFetcher returns a fetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

// Describe returns the file path, used as the refresh source label.
func (f *FileFetcher) Describe() string {
	return f.Path
}

// Fetch reads the region of sheet. Errors wrap ErrFetchUnavailable.
func (f *FileFetcher) Fetch(ctx context.Context, sheet string, region Region) (Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUnavailable, err)
	}
	if _, err := os.Stat(f.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file not found at %s", ErrFetchUnavailable, f.Path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrFetchUnavailable, f.Path, err)
	}

	var (
		g   Grid
		err error
	)
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		g, err = readXLSX(f.Path, sheet)
	case ".csv":
		p, ok := f.csvPathForSheet(sheet)
		if !ok {
			return nil, fmt.Errorf("%w: sheet %q not found", ErrFetchUnavailable, sheet)
		}
		g, err = readCSV(p)
	default:
		return nil, fmt.Errorf("%w: unsupported workbook format %q", ErrFetchUnavailable, filepath.Ext(f.Path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUnavailable, err)
	}
	return g.Clip(region), nil
}

func readXLSX(path, sheet string) (Grid, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = book.Close() }()

	if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	// Raw values: formatted text ("1,234.50", "$70.50") would not coerce to a price.
	rows, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return FromStrings(rows), nil
}

// csvPathForSheet prefers "<base>_<sheet>.csv" next to the main file.
func (f *FileFetcher) csvPathForSheet(sheet string) (string, bool) {
	if sheet == "" {
		return f.Path, true
	}
	ext := filepath.Ext(f.Path)
	alt := strings.TrimSuffix(f.Path, ext) + "_" + sheet + ext
	if _, err := os.Stat(alt); err == nil {
		return alt, true
	}
	if f.PrimarySheet == "" || strings.EqualFold(f.PrimarySheet, sheet) {
		return f.Path, true
	}
	return "", false
}

func readCSV(path string) (Grid, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return FromStrings(rows), nil
}
