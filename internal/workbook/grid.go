package workbook

import (
	"strings"

	"github.com/spf13/cast"
)

// Grid is a row-major rectangle of raw cell values as read from a sheet.
// A cell is nil (blank), string, float64, int or bool; no schema is assumed.
// Rows may be ragged: a missing trailing cell reads as blank.
type Grid [][]any

// Region bounds how much of a sheet is read, anchored at A1.
type Region struct {
	Rows int
	Cols int
}

// MainRegion is A1:AZ300.
var MainRegion = Region{Rows: 300, Cols: 52}

// ProfitRegion is A1:Z50.
var ProfitRegion = Region{Rows: 50, Cols: 26}

// Cell returns the value at (row, col), or nil when outside the grid.
func (g Grid) Cell(row, col int) any {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return nil
	}
	return g[row][col]
}

// Width is the length of the widest row.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Row returns the row as strings (see CellString), padded to Width.
func (g Grid) Row(row int) []string {
	if row < 0 || row >= len(g) {
		return nil
	}
	out := make([]string, g.Width())
	for c := range out {
		out[c] = CellString(g.Cell(row, c))
	}
	return out
}

// Clip limits the grid to the region, dropping rows and columns beyond it.
func (g Grid) Clip(r Region) Grid {
	rows := g
	if r.Rows > 0 && len(rows) > r.Rows {
		rows = rows[:r.Rows]
	}
	out := make(Grid, len(rows))
	for i, row := range rows {
		if r.Cols > 0 && len(row) > r.Cols {
			row = row[:r.Cols]
		}
		out[i] = row
	}
	return out
}

// Strings renders every cell as text, for raw sheet views.
func (g Grid) Strings() [][]string {
	out := make([][]string, len(g))
	for i := range g {
		out[i] = make([]string, len(g[i]))
		for j, v := range g[i] {
			out[i][j] = CellString(v)
		}
	}
	return out
}

// CellString renders a raw cell as trimmed text. Blank cells are "".
// Whole floats print without a decimal part ("5" rather than "5.0").
func CellString(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// FromStrings converts text rows into a Grid, mapping blank text to nil.
func FromStrings(rows [][]string) Grid {
	g := make(Grid, len(rows))
	for i, r := range rows {
		g[i] = make([]any, len(r))
		for j, s := range r {
			if strings.TrimSpace(s) == "" {
				continue
			}
			g[i][j] = s
		}
	}
	return g
}
