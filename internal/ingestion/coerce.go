package ingestion

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ParseFloatOr converts a raw cell to float64, returning def when the cell is
// blank, not numeric, NaN or infinite. It never fails: spreadsheet cells
// routinely hold formulas, error strings or text where a number is expected.
func ParseFloatOr(v any, def float64) float64 {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return def
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// blankNames are name-cell values treated as "no instrument".
var blankNames = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
}

// isBlankName reports whether a trimmed name cell is empty or a sentinel.
func isBlankName(name string) bool {
	_, ok := blankNames[strings.ToLower(name)]
	return ok
}
