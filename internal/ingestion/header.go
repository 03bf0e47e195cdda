package ingestion

import (
	"errors"
	"strings"

	"github.com/guttosm/dappulse/internal/workbook"
)

// ErrHeaderNotFound is returned when no block header row exists within the
// scan limit.
var ErrHeaderNotFound = errors.New("header row not found")

// HeaderNotFoundMessage is the diagnostic shown to users for ErrHeaderNotFound.
const HeaderNotFoundMessage = "Could not find 'Outrights' header row."

const (
	// DefaultScanLimit is how many leading rows are searched for the header.
	DefaultScanLimit = 15
	minScanLimit     = 5
	maxScanLimit     = 15
)

// headerTokens are matched case-insensitively as substrings; "outright"
// covers both "Outright" and "Outrights".
var headerTokens = []string{"outright", "spread"}

// LocateHeader returns the index of the first row, among the first scanLimit
// rows, with a cell containing a block header token. scanLimit is clamped to
// 5..15; zero selects DefaultScanLimit.
func LocateHeader(grid workbook.Grid, scanLimit int) (int, error) {
	limit := clampScanLimit(scanLimit)
	if limit > len(grid) {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		for c := range grid[i] {
			cell := strings.ToLower(workbook.CellString(grid[i][c]))
			if cell == "" {
				continue
			}
			for _, tok := range headerTokens {
				if strings.Contains(cell, tok) {
					return i, nil
				}
			}
		}
	}
	return -1, ErrHeaderNotFound
}

func clampScanLimit(n int) int {
	switch {
	case n == 0:
		return DefaultScanLimit
	case n < minScanLimit:
		return minScanLimit
	case n > maxScanLimit:
		return maxScanLimit
	}
	return n
}
