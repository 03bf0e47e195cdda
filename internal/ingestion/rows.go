package ingestion

import (
	"github.com/guttosm/dappulse/internal/domain/models"
	"github.com/guttosm/dappulse/internal/workbook"
)

// DefaultTickValue applies when a tick value cannot be read from the sheet.
const DefaultTickValue = 100.0

// KindTickValue is the fixed tick value given to Spread and Fly records.
// The sheet carries no tick value column for those blocks, so they are not
// read dynamically the way outrights are.
type KindTickValue struct {
	Spread float64
	Fly    float64
}

// DefaultKindTickValue gives both kinds DefaultTickValue.
var DefaultKindTickValue = KindTickValue{Spread: DefaultTickValue, Fly: DefaultTickValue}

// block describes where one kind of record lives within a data row.
type block struct {
	kind      models.Kind
	nameCol   int
	priceCol  int
	tickValue func(row []any) float64
}

// NormalizeRows turns data rows into market records, in row-then-block order
// (row 0 outright, spread, fly, then row 1, ...). Each row yields 0 to 3
// records. width is the sheet width used to decide whether the outright tick
// value column exists; pass 0 to derive it from rows.
func NormalizeRows(rows workbook.Grid, cols models.ColumnMap, width int, kt KindTickValue) []models.MarketRecord {
	if width <= 0 {
		width = rows.Width()
	}
	outrightTV := func(row []any) float64 {
		if cols.OutrightTickValue < 0 || cols.OutrightTickValue >= width {
			return DefaultTickValue
		}
		return ParseFloatOr(cellAt(row, cols.OutrightTickValue), 0)
	}
	blocks := []block{
		{kind: models.KindOutright, nameCol: cols.OutrightName, priceCol: cols.OutrightLast, tickValue: outrightTV},
		{kind: models.KindSpread, nameCol: cols.SpreadName, priceCol: cols.SpreadLast, tickValue: func([]any) float64 { return kt.Spread }},
		{kind: models.KindFly, nameCol: cols.FlyName, priceCol: cols.FlyLast, tickValue: func([]any) float64 { return kt.Fly }},
	}

	out := make([]models.MarketRecord, 0, len(rows))
	for _, row := range rows {
		for _, b := range blocks {
			name := workbook.CellString(cellAt(row, b.nameCol))
			if isBlankName(name) {
				continue
			}
			out = append(out, models.MarketRecord{
				Instrument: name,
				Kind:       b.kind,
				Price:      ParseFloatOr(cellAt(row, b.priceCol), 0),
				TickValue:  b.tickValue(row),
			})
		}
	}
	return out
}

func cellAt(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}
