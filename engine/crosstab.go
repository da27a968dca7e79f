package engine

import "sort"

// ============================================================================
// CROSS-TAB — Per-kecamatan distribution of one indicator
// ============================================================================
// Output is dense: every series carries one cell per group, zero-filled.
// ============================================================================

// CrossTabSeries is one category across all groups.
type CrossTabSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// CrossTab is a groups × categories count matrix.
type CrossTab struct {
	Groups []string         `json:"groups"`
	Series []CrossTabSeries `json:"series"`
}

// Cell returns the count for (group, category), 0 when either is unknown.
func (ct CrossTab) Cell(group, category string) int {
	gi := -1
	for i, g := range ct.Groups {
		if g == group {
			gi = i
			break
		}
	}
	if gi < 0 {
		return 0
	}
	for _, s := range ct.Series {
		if s.Name == category {
			return s.Data[gi]
		}
	}
	return 0
}

// Totals returns per-category totals across all groups, in series order.
func (ct CrossTab) Totals() []LabeledCount {
	out := make([]LabeledCount, len(ct.Series))
	for i, s := range ct.Series {
		total := 0
		for _, n := range s.Data {
			total += n
		}
		out[i] = LabeledCount{Label: s.Name, Count: total}
	}
	return out
}

// GroupTotals returns row counts per group across all categories.
func (ct CrossTab) GroupTotals() []LabeledCount {
	out := make([]LabeledCount, len(ct.Groups))
	for gi, g := range ct.Groups {
		total := 0
		for _, s := range ct.Series {
			total += s.Data[gi]
		}
		out[gi] = LabeledCount{Label: g, Count: total}
	}
	return out
}

// BuildPerGroupCrossTab counts rows per (groupKey, valueKey) pair.
//
// Groups are every group label seen in the view, ordered canonical-first
// (see OrderGroupKeys); an absent group value lands in "Tidak Terdefinisi".
// Categories come from WithCategories, else from WithBins bucket labels for
// quantitative values, else from the distinct values seen (sorted).
// Rows whose category is not in the list are ignored.
func BuildPerGroupCrossTab(view RecordView, valueKey, groupKey string, opts ...Option) CrossTab {
	cfg := applyOptions(opts)
	quant := len(cfg.Bins) > 0
	bins := normalizeBins(cfg.Bins)
	bucketLabels := BucketLabels(bins)

	var categories []string
	switch {
	case len(cfg.Categories) > 0:
		categories = append([]string(nil), cfg.Categories...)
	case quant:
		categories = bucketLabels
	default:
		categories = discoverCategories(view, valueKey, cfg.NormalizeEmpty)
	}
	catIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		catIndex[c] = i
	}

	groups := GroupByField(view, groupKey)
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	ordered := OrderGroupKeys(keys, cfg.GroupOrder)
	groupIndex := make(map[string]int, len(ordered))
	for i, g := range ordered {
		groupIndex[g] = i
	}

	ct := CrossTab{
		Groups: ordered,
		Series: make([]CrossTabSeries, len(categories)),
	}
	if ct.Groups == nil {
		ct.Groups = []string{}
	}
	for i, c := range categories {
		ct.Series[i] = CrossTabSeries{Name: c, Data: make([]int, len(ordered))}
	}

	for _, g := range groups {
		gi := groupIndex[g.Key]
		for i := 0; i < g.View.Len(); i++ {
			v := g.View.Row(i).Field(valueKey)
			var category string
			if quant {
				category = bucketLabels[binIndex(bins, v)]
			} else {
				label, ok := categoryLabel(v, cfg.NormalizeEmpty)
				if !ok {
					continue
				}
				category = label
			}
			ci, ok := catIndex[category]
			if !ok {
				continue
			}
			ct.Series[ci].Data[gi]++
		}
	}
	return ct
}

// discoverCategories returns the sorted distinct labels of valueKey, with
// "Tidak Terdefinisi" last when empty values are normalized.
func discoverCategories(view RecordView, valueKey string, normalizeEmpty bool) []string {
	seen := make(map[string]bool)
	var out []string
	hasUndefined := false
	for i := 0; i < viewLen(view); i++ {
		label, ok := categoryLabel(view.Row(i).Field(valueKey), normalizeEmpty)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		if label == TidakTerdefinisi {
			hasUndefined = true
			continue
		}
		out = append(out, label)
	}
	sort.Strings(out)
	if hasUndefined {
		out = append(out, TidakTerdefinisi)
	}
	return out
}
