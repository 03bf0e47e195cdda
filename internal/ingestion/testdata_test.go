package ingestion

import "github.com/guttosm/dappulse/internal/workbook"

const sheetWidth = 30

// row builds one sheet row of sheetWidth cells from a sparse column map.
func row(cells map[int]string) []string {
	r := make([]string, sheetWidth)
	for c, v := range cells {
		r[c] = v
	}
	return r
}

// standardHeader mirrors the production layout: outrights in B..O, spreads
// from N, flies from Z.
func standardHeader() []string {
	return row(map[int]string{
		1:  "Outrights",
		3:  "Last",
		14: "Tick Value",
		13: "Spread",
		15: "LTP",
		25: "Fly",
		26: "Last",
	})
}

// sampleGrid has two title rows, a blank row, the header at index 3 and four
// data rows.
func sampleGrid() workbook.Grid {
	return workbook.FromStrings([][]string{
		row(map[int]string{0: "DAP Main"}),
		row(map[int]string{0: "updated 10:32"}),
		row(nil),
		standardHeader(),
		row(map[int]string{1: "CLZ5", 3: "70.5", 14: "100", 13: "CLZ5-CLF6", 15: "0.4", 25: "CLZ5/F6/G6", 26: "0.2"}),
		row(map[int]string{1: "CLF6", 3: "#N/A", 13: "nan", 25: "None"}),
		row(map[int]string{1: "   ", 13: "CLF6-CLG6", 15: "abc"}),
		row(nil),
	})
}
