package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================================================
// AGGREGATORS — Counting, Summaries and Histograms via RecordView
// ============================================================================
// All functions operate on RecordView: zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// None of them mutate their input and all of them accept an empty view.
// ============================================================================

// ============================================================================
// CATEGORY COUNTS
// ============================================================================

// LabeledCount is one (label, count) pair.
type LabeledCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCounts maps category labels to row counts, remembering the order
// in which labels were first seen.
type CategoryCounts struct {
	labels []string
	counts map[string]int
}

func newCategoryCounts() CategoryCounts {
	return CategoryCounts{counts: make(map[string]int)}
}

func (c *CategoryCounts) add(label string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[label]; !ok {
		c.labels = append(c.labels, label)
	}
	c.counts[label]++
}

// Get returns the count for label (0 when unseen).
func (c CategoryCounts) Get(label string) int { return c.counts[label] }

// Len returns the number of distinct labels.
func (c CategoryCounts) Len() int { return len(c.labels) }

// Labels returns labels in first-seen order.
func (c CategoryCounts) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Total returns the sum of all counts.
func (c CategoryCounts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Entries returns (label, count) pairs in first-seen order.
func (c CategoryCounts) Entries() []LabeledCount {
	out := make([]LabeledCount, 0, len(c.labels))
	for _, l := range c.labels {
		out = append(out, LabeledCount{Label: l, Count: c.counts[l]})
	}
	return out
}

// Ranked returns entries sorted by count descending. Ties keep first-seen order.
func (c CategoryCounts) Ranked() []LabeledCount {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// MarshalJSON writes the counts as an object.
func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.counts)
}

// BuildCategoryCounts counts rows per distinct value of valueKey.
// Absent values are skipped unless WithNormalizeEmpty is set, in which case
// they count as "Tidak Terdefinisi".
func BuildCategoryCounts(view RecordView, valueKey string, opts ...Option) CategoryCounts {
	cfg := applyOptions(opts)
	counts := newCategoryCounts()
	for i := 0; i < viewLen(view); i++ {
		label, ok := categoryLabel(view.Row(i).Field(valueKey), cfg.NormalizeEmpty)
		if !ok {
			continue
		}
		counts.add(label)
	}
	return counts
}

func categoryLabel(v Value, normalizeEmpty bool) (string, bool) {
	if !v.IsAbsent() {
		return v.Label(), true
	}
	if normalizeEmpty {
		return TidakTerdefinisi, true
	}
	return "", false
}

// ============================================================================
// SUMMARY STATS — qualitative indicators
// ============================================================================

// SummaryStats summarizes a qualitative indicator.
type SummaryStats struct {
	DominantLabel   string  `json:"dominantLabel"`
	PercentDominant float64 `json:"percentDominant"`
	TotalKategori   int     `json:"totalKategori"`
	TotalDesa       int     `json:"totalDesa"`
	DesaDenganData  int     `json:"desaDenganData"`
}

// ComputeSummaryStats finds the dominant category of valueKey. The percent
// is relative to rows that carry data. An empty valueKey yields the zero
// summary with "-" as the dominant label.
func ComputeSummaryStats(view RecordView, valueKey string) SummaryStats {
	stats := SummaryStats{DominantLabel: NoData}
	if view == nil || valueKey == "" {
		return stats
	}

	counts := BuildCategoryCounts(view, valueKey)
	stats.TotalDesa = view.Len()
	stats.DesaDenganData = counts.Total()
	stats.TotalKategori = counts.Len()
	if stats.DesaDenganData == 0 {
		return stats
	}

	top := counts.Ranked()[0]
	stats.DominantLabel = top.Label
	stats.PercentDominant = RoundTo2(float64(top.Count) / float64(stats.DesaDenganData) * 100)
	return stats
}

// ============================================================================
// QUANT STATS — quantitative indicators
// ============================================================================

// QuantStats summarizes a numeric indicator over rows with numeric data.
type QuantStats struct {
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Total float64 `json:"total"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ComputeQuantStats aggregates valueKey over rows whose value reads as a
// number. With no such rows every field is 0.
func ComputeQuantStats(view RecordView, valueKey string) QuantStats {
	var stats QuantStats
	for i := 0; i < viewLen(view); i++ {
		f, ok := view.Row(i).Field(valueKey).Float()
		if !ok {
			continue
		}
		if stats.Count == 0 || f > stats.Max {
			stats.Max = f
		}
		if stats.Count == 0 || f < stats.Min {
			stats.Min = f
		}
		stats.Total += f
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Mean = stats.Total / float64(stats.Count)
	}
	return stats
}

// ============================================================================
// HISTOGRAM
// ============================================================================

// HistogramBucket is one histogram bar.
type HistogramBucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// BuildHistogram buckets valueKey by bins (ascending lower bounds). A value
// equal to a bin lands in that bin, except that values at or above the last
// bin land in the "<last>+" bucket. Absent or non-numeric values count
// toward the first bucket. Empty bins fall back to DefaultBins.
func BuildHistogram(view RecordView, valueKey string, bins []int) []HistogramBucket {
	bins = normalizeBins(bins)
	labels := BucketLabels(bins)
	out := make([]HistogramBucket, len(labels))
	for i, l := range labels {
		out[i] = HistogramBucket{Bucket: l}
	}
	for i := 0; i < viewLen(view); i++ {
		out[binIndex(bins, view.Row(i).Field(valueKey))].Count++
	}
	return out
}

// BucketLabels returns the bucket labels for bins, including the overflow.
func BucketLabels(bins []int) []string {
	bins = normalizeBins(bins)
	labels := make([]string, 0, len(bins)+1)
	for _, b := range bins {
		labels = append(labels, strconv.Itoa(b))
	}
	return append(labels, fmt.Sprintf("%d+", bins[len(bins)-1]))
}

// HistogramEntries converts buckets to labeled counts for the chart adapter.
func HistogramEntries(buckets []HistogramBucket) []LabeledCount {
	out := make([]LabeledCount, len(buckets))
	for i, b := range buckets {
		out[i] = LabeledCount{Label: b.Bucket, Count: b.Count}
	}
	return out
}

func normalizeBins(bins []int) []int {
	if len(bins) == 0 {
		return DefaultBins
	}
	ascending := true
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			ascending = false
			break
		}
	}
	if ascending {
		return bins
	}
	sorted := append([]int(nil), bins...)
	sort.Ints(sorted)
	out := sorted[:1]
	for _, b := range sorted[1:] {
		if b != out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

func binIndex(bins []int, v Value) int {
	f, ok := v.Float()
	if !ok {
		return 0
	}
	last := len(bins) - 1
	if f >= float64(bins[last]) {
		return last + 1
	}
	idx := sort.Search(len(bins), func(i int) bool { return float64(bins[i]) > f }) - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupByField splits a view by the display label of key. Absent values
// group under "Tidak Terdefinisi". Groups keep first-seen order.
func GroupByField(view RecordView, key string) []Group {
	indexMap := make(map[string][]int)
	var order []string
	for i := 0; i < viewLen(view); i++ {
		label, _ := categoryLabel(view.Row(i).Field(key), true)
		if _, exists := indexMap[label]; !exists {
			order = append(order, label)
		}
		indexMap[label] = append(indexMap[label], i)
	}

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		idx := indexMap[label]
		groups = append(groups, Group{
			Key:   label,
			Label: label,
			Count: len(idx),
			View:  newSubView(view, idx),
		})
	}
	return groups
}

// OrderGroupKeys orders keys canonical-first: keys named in canonical come
// in that order (case-insensitive), then the rest alphabetically, and
// "Tidak Terdefinisi" always last.
func OrderGroupKeys(keys []string, canonical []string) []string {
	rank := make(map[string]int, len(canonical))
	for i, c := range canonical {
		rank[strings.ToUpper(c)] = i
	}
	out := append([]string(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a == TidakTerdefinisi) != (b == TidakTerdefinisi) {
			return b == TidakTerdefinisi
		}
		ra, okA := rank[strings.ToUpper(a)]
		rb, okB := rank[strings.ToUpper(b)]
		switch {
		case okA && okB:
			return ra < rb
		case okA != okB:
			return okA
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return out
}

// SortGroups orders groups with OrderGroupKeys.
func SortGroups(groups []Group, canonical []string) {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	pos := make(map[string]int, len(keys))
	for i, k := range OrderGroupKeys(keys, canonical) {
		pos[k] = i
	}
	sort.SliceStable(groups, func(i, j int) bool { return pos[groups[i].Key] < pos[groups[j].Key] })
}

// UniqueValues returns distinct display labels of a field, first-seen order.
func UniqueValues(view RecordView, key string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < viewLen(view); i++ {
		val := view.Row(i).Field(key).Label()
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatInt formats an integer with Indonesian thousands separators.
func FormatInt(n int) string {
	return idPrinter.Sprintf("%d", n)
}

// FormatNumber formats a number Indonesian-style: whole numbers without
// decimals, otherwise one decimal place.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return idPrinter.Sprintf("%d", int64(v))
	}
	return idPrinter.Sprintf("%.1f", v)
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(v float64) string {
	return idPrinter.Sprintf("%.1f%%", v)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
