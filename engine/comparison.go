package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// COMPARISON — Side-by-side view of up to five villages
// ============================================================================

// Selection limits.
const (
	MaxComparisonVillages   = 5
	MaxComparisonIndicators = 5
	MinComparisonIndicators = 2
)

// ComparisonVillage identifies a selected village.
type ComparisonVillage struct {
	ID        string `json:"id_desa"`
	Desa      string `json:"nama_desa"`
	Kecamatan string `json:"nama_kecamatan"`
}

// DisplayName renders "Desa (Kecamatan)".
func (v ComparisonVillage) DisplayName() string {
	if v.Kecamatan == "" {
		return v.Desa
	}
	return fmt.Sprintf("%s (%s)", v.Desa, v.Kecamatan)
}

// ComparisonSeries is one indicator across the selected villages, in
// selection order.
type ComparisonSeries struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Data  []Value `json:"data"`
	Color string  `json:"color"`
}

// ComparisonRow is one village in the summary table. Total and Average are
// only set when every selected indicator is quantitative.
type ComparisonRow struct {
	Rank    int               `json:"rank"`
	Village ComparisonVillage `json:"village"`
	Values  map[string]Value  `json:"values"`
	Total   *float64          `json:"total,omitempty"`
	Average *float64          `json:"average,omitempty"`
}

// ComparisonResult is the comparison page model.
type ComparisonResult struct {
	IsValidForComparison bool                `json:"isValidForComparison"`
	HasQualitativeData   bool                `json:"hasQualitativeData"`
	Villages             []ComparisonVillage `json:"villages"`
	Indicators           []Indicator         `json:"indicators"`
	Series               []ComparisonSeries  `json:"series"`
	SummaryData          []ComparisonRow     `json:"summaryData"`
}

// BuildComparison compares the selected villages on the selected indicators.
//
// Unknown village ids are skipped and duplicates collapse onto their first
// occurrence; selections beyond the limits are ignored. The result is valid
// when the caller selected at least one village id and two indicators,
// whether or not the ids resolve to rows. With only quantitative
// indicators the summary is sorted by total descending (stable); otherwise
// it keeps selection order and carries no totals.
func BuildComparison(view RecordView, villageIDs, indicatorKeys []string, lookup IndicatorLookup) ComparisonResult {
	rows := selectVillages(view, villageIDs)
	keys := dedupe(indicatorKeys, MaxComparisonIndicators)

	selected := NewSliceView(rows)
	res := ComparisonResult{
		IsValidForComparison: len(dedupe(villageIDs, 0)) >= 1 && len(keys) >= MinComparisonIndicators,
		Villages:             make([]ComparisonVillage, len(rows)),
		Indicators:           make([]Indicator, 0, len(keys)),
		Series:               make([]ComparisonSeries, 0, len(keys)),
		SummaryData:          make([]ComparisonRow, 0, len(rows)),
	}
	for i, r := range rows {
		res.Villages[i] = ComparisonVillage{ID: r.ID, Desa: r.Desa, Kecamatan: r.Kecamatan}
	}

	for i, key := range keys {
		ind := inferType(ResolveIndicator(lookup, key), selected)
		if !ind.IsQuantitative() {
			res.HasQualitativeData = true
		}
		color := ind.Color
		if color == "" {
			color = PaletteColor(i)
		}
		series := ComparisonSeries{Key: ind.Key, Name: ind.Label, Color: color, Data: make([]Value, len(rows))}
		for j, r := range rows {
			series.Data[j] = ind.Value(r)
		}
		res.Indicators = append(res.Indicators, ind)
		res.Series = append(res.Series, series)
	}

	quantMode := !res.HasQualitativeData && len(res.Series) > 0
	for j, v := range res.Villages {
		row := ComparisonRow{Village: v, Values: make(map[string]Value, len(res.Series))}
		var total float64
		for _, s := range res.Series {
			row.Values[s.Key] = s.Data[j]
			total += s.Data[j].OrZero()
		}
		if quantMode {
			avg := RoundTo2(total / float64(len(res.Series)))
			t := total
			row.Total = &t
			row.Average = &avg
		}
		res.SummaryData = append(res.SummaryData, row)
	}

	if quantMode {
		sort.SliceStable(res.SummaryData, func(a, b int) bool {
			return *res.SummaryData[a].Total > *res.SummaryData[b].Total
		})
	}
	for i := range res.SummaryData {
		res.SummaryData[i].Rank = i + 1
	}
	return res
}

func selectVillages(view RecordView, ids []string) []VillageRecord {
	byID := make(map[string]int, viewLen(view))
	for i := viewLen(view) - 1; i >= 0; i-- {
		byID[view.Row(i).ID] = i
	}
	out := make([]VillageRecord, 0, MaxComparisonVillages)
	for _, id := range dedupe(ids, 0) {
		idx, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, view.Row(idx))
		if len(out) == MaxComparisonVillages {
			break
		}
	}
	return out
}

// dedupe trims, drops blanks and repeats, and caps at limit (0 = no cap).
func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
