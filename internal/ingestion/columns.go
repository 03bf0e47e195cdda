package ingestion

import (
	"strings"

	"github.com/guttosm/dappulse/internal/domain/models"
)

// Field names one of the seven columns the parser needs.
type Field int

const (
	OutrightName Field = iota
	OutrightLast
	OutrightTickValue
	SpreadName
	SpreadLast
	FlyName
	FlyLast
	numFields
)

var fieldNames = [numFields]string{
	OutrightName:      "outright_name",
	OutrightLast:      "outright_last",
	OutrightTickValue: "outright_tick_value",
	SpreadName:        "spread_name",
	SpreadLast:        "spread_last",
	FlyName:           "fly_name",
	FlyLast:           "fly_last",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// noUpper means a rule applies to every column from its lower bound on.
const noUpper = -1

// columnRule recognizes one field: the header must sit in [min, max] and
// contain one of keywords. When after is set, the column must also lie to the
// right of that field's resolved column.
type columnRule struct {
	field    Field
	min, max int
	keywords []string
	after    *Field
}

func fieldRef(f Field) *Field { return &f }

// columnRules encodes the fixed layout of the market sheet: outrights on the
// left, spreads in the middle, flies on the right. The column windows keep a
// generic keyword such as "last" from matching inside the wrong block.
var columnRules = []columnRule{
	{field: OutrightName, min: 0, max: 9, keywords: []string{"outright", "symbol"}},
	{field: OutrightLast, min: 0, max: 9, keywords: []string{"last", "price"}},
	{field: OutrightTickValue, min: 0, max: 14, keywords: []string{"tick value"}},
	{field: SpreadName, min: 11, max: 19, keywords: []string{"spread"}},
	{field: SpreadLast, min: 11, max: 19, keywords: []string{"last", "ltp"}, after: fieldRef(SpreadName)},
	{field: FlyName, min: 21, max: noUpper, keywords: []string{"fly"}},
	{field: FlyLast, min: 21, max: noUpper, keywords: []string{"last", "ltp"}, after: fieldRef(FlyName)},
}

// fallbackColumns is used for every field the keyword phase leaves unresolved.
var fallbackColumns = [numFields]int{
	OutrightName:      1,  // B
	OutrightLast:      3,  // D
	OutrightTickValue: 14, // O
	SpreadName:        13, // N
	SpreadLast:        14, // O
	FlyName:           25, // Z
	FlyLast:           26, // AA
}

// Matches is the outcome of the keyword phase: a field is present only when
// a header matched it.
type Matches map[Field]int

// MatchColumns runs the keyword phase over a header row. Headers are trimmed
// and lower-cased; for each field the first matching column wins.
func MatchColumns(headers []string) Matches {
	m := Matches{}
	for idx, raw := range headers {
		h := strings.ToLower(strings.TrimSpace(raw))
		if h == "" {
			continue
		}
		for _, rule := range columnRules {
			if _, done := m[rule.field]; done {
				continue
			}
			if idx < rule.min || (rule.max != noUpper && idx > rule.max) {
				continue
			}
			if rule.after != nil {
				if prev, ok := m[*rule.after]; ok && idx <= prev {
					continue
				}
			}
			if containsAny(h, rule.keywords) {
				m[rule.field] = idx
			}
		}
	}
	return m
}

// ApplyFallbacks completes the keyword matches with the fixed layout. It
// always returns a full column map.
func ApplyFallbacks(m Matches) models.ColumnMap {
	var idx [numFields]int
	var fallbacks []string
	for f := Field(0); f < numFields; f++ {
		if v, ok := m[f]; ok {
			idx[f] = v
			continue
		}
		idx[f] = fallbackColumns[f]
		fallbacks = append(fallbacks, f.String())
	}
	return models.ColumnMap{
		OutrightName:      idx[OutrightName],
		OutrightLast:      idx[OutrightLast],
		OutrightTickValue: idx[OutrightTickValue],
		SpreadName:        idx[SpreadName],
		SpreadLast:        idx[SpreadLast],
		FlyName:           idx[FlyName],
		FlyLast:           idx[FlyLast],
		Fallbacks:         fallbacks,
	}
}

// MapColumns runs both phases.
func MapColumns(headers []string) models.ColumnMap {
	return ApplyFallbacks(MatchColumns(headers))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
