package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — Per-indicator detail panel in one pass
// ============================================================================
// Entry point: Execute(query, view, lookup, opts...)
//
// Pipeline:
//   1. Resolve the indicator (registry or fallback)
//   2. Apply kecamatan filter → SubView
//   3. Summary (qualitative) or quant stats (quantitative)
//   4. Donut or histogram, per-kecamatan stacked series, ranking
//   5. Resolve reply template placeholders
//
// Zero data copy: the engine reads consumer data through RecordView.
// ============================================================================

// ErrNoIndicator is returned when a query names no indicator.
var ErrNoIndicator = errors.New("engine: query has no indicator")

// IndicatorQuery selects one indicator and an optional district filter.
type IndicatorQuery struct {
	Indicator      string   `json:"indicator"`
	Kecamatan      []string `json:"kecamatan,omitempty"`
	NormalizeEmpty bool     `json:"normalizeEmpty,omitempty"`
	Reply          string   `json:"reply,omitempty"` // template: "{dominant} di {percent} desa"
	TopN           int      `json:"topN,omitempty"`  // ranking cut, 0 = all
}

// Result is the render-ready detail panel of one indicator.
type Result struct {
	Success   bool      `json:"success"`
	Empty     bool      `json:"empty"`
	Reply     string    `json:"reply"`
	Indicator Indicator `json:"indicator"`
	Area      string    `json:"area"`
	TotalDesa int       `json:"totalDesa"`

	// Qualitative
	Summary   *SummaryStats `json:"summary,omitempty"`
	Donut     []DonutSlice  `json:"donut,omitempty"`
	RankedBar []ChartPoint  `json:"rankedBar,omitempty"`

	// Quantitative
	Quant     *QuantStats       `json:"quant,omitempty"`
	Histogram []HistogramBucket `json:"histogram,omitempty"`
	Ranking   *RankingResult    `json:"ranking,omitempty"`
	Binary    []DonutSlice      `json:"binary,omitempty"`

	// Both
	CrossTab    *CrossTab     `json:"crossTab,omitempty"`
	Stacked     []ChartSeries `json:"stacked,omitempty"`
	ChartConfig *ChartConfig  `json:"chartConfig,omitempty"`
	StackConfig *ChartConfig  `json:"stackConfig,omitempty"`
}

// Execute runs the detail panel of one indicator against a view.
// An unknown indicator key falls back to a synthesized definition. Empty
// data after filtering yields a Result with Empty set and zero-shaped
// aggregates, never an error.
//
// Options:
//   - WithLogger(l): diagnostics
//   - WithNormalizeEmpty(true): same as query.NormalizeEmpty
//   - WithColors(m): overrides the indicator's value colors
func Execute(query IndicatorQuery, view RecordView, lookup IndicatorLookup, opts ...Option) (*Result, error) {
	key := strings.TrimSpace(query.Indicator)
	if key == "" {
		return nil, ErrNoIndicator
	}
	cfg := applyOptions(opts)
	if query.NormalizeEmpty {
		cfg.NormalizeEmpty = true
	}
	logger := cfg.Logger.With(zap.String("indicator", key))

	filtered := ApplyFilters(view, KecamatanFilter(query.Kecamatan...))
	ind := inferType(ResolveIndicator(lookup, key), filtered)
	if ind.Fallback {
		logger.Debug("indicator not in registry, using fallback", zap.String("type", string(ind.Type)))
	}

	result := &Result{
		Success:   true,
		Indicator: ind,
		Area:      areaLabel(query.Kecamatan),
		TotalDesa: viewLen(filtered),
	}
	if result.TotalDesa == 0 {
		result.Empty = true
		logger.Info("no rows after filtering", zap.Strings("kecamatan", query.Kecamatan))
	}

	logger.Debug("executing indicator report",
		zap.Int("rows", result.TotalDesa),
		zap.Int("source_rows", viewLen(view)),
		zap.String("type", string(ind.Type)))

	colors := ind.ValueColors
	if len(cfg.Colors) > 0 {
		colors = cfg.Colors
	}

	// Materialize accessor values once; aggregation reads them by DataKey.
	values := indicatorView(filtered, ind)

	if ind.IsQuantitative() {
		executeQuantitative(result, values, ind, colors)
	} else {
		executeQualitative(result, values, ind, colors, cfg.NormalizeEmpty)
	}

	if result.Empty {
		result.Reply = fmt.Sprintf("Tidak ada data desa untuk %s.", result.Area)
	} else {
		result.Reply = ResolvePlaceholders(query.Reply, result)
	}
	if query.TopN > 0 && result.Ranking != nil {
		result.Ranking.RankingData = result.Ranking.Top(query.TopN)
	}
	return result, nil
}

func executeQualitative(result *Result, view RecordView, ind Indicator, colors map[string]string, normalizeEmpty bool) {
	summary := ComputeSummaryStats(view, ind.DataKey)
	result.Summary = &summary

	counts := BuildCategoryCounts(view, ind.DataKey, WithNormalizeEmpty(normalizeEmpty))
	result.Donut = ToDonutSeries(counts.Entries(), colors, WithDropZeros(true))
	result.RankedBar = ToRankedBarSeries(counts)
	result.ChartConfig = DonutChart(ind.Label, result.Donut)

	ct := BuildPerGroupCrossTab(view, ind.DataKey, FieldKecamatan, WithNormalizeEmpty(normalizeEmpty))
	result.CrossTab = &ct
	result.Stacked = ToGroupedStackedSeries(ct, colors)
	result.StackConfig = StackedBarChart(ind.Label+" per Kecamatan", result.Stacked)
}

func executeQuantitative(result *Result, view RecordView, ind Indicator, colors map[string]string) {
	quant := ComputeQuantStats(view, ind.DataKey)
	result.Quant = &quant

	bins := ind.EffectiveBins()
	result.Histogram = BuildHistogram(view, ind.DataKey, bins)
	result.ChartConfig = BarChart(ind.Label, "Jumlah "+ind.Label, result.Histogram, ind.Color)

	ranking := BuildRankingAndStats(view, QuantitativeAccessor(ind.DataKey))
	result.Ranking = &ranking
	result.Binary = ToBinarySeries(ranking.DistributionData, colors)
	if ind.Chart == ChartBinary {
		result.ChartConfig = DonutChart(ind.Label, result.Binary)
	}

	ct := BuildPerGroupCrossTab(view, ind.DataKey, FieldKecamatan, WithBins(bins))
	result.CrossTab = &ct
	result.Stacked = ToGroupedStackedSeries(ct, colors)
	result.StackConfig = StackedBarChart(ind.Label+" per Kecamatan", result.Stacked)
}

// indicatorView projects the indicator through its accessor so that
// aggregation by DataKey sees accessor semantics. Absent values stay absent.
func indicatorView(view RecordView, ind Indicator) RecordView {
	if ind.Accessor == nil {
		return view
	}
	rows := make([]VillageRecord, view.Len())
	for i := range rows {
		r := view.Row(i)
		raw := r.Field(ind.DataKey)
		projected := VillageRecord{ID: r.ID, Desa: r.Desa, Kecamatan: r.Kecamatan, Fields: map[string]Value{}}
		if !raw.IsAbsent() {
			projected.Set(ind.DataKey, ind.Accessor(r))
		}
		rows[i] = projected
	}
	return NewSliceView(rows)
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// ResolvePlaceholders substitutes computed values into the reply template.
// Supported: {indicator} {area} {count} {dominant} {percent} {total} {max}
// {min} {mean} {ada} {tidak_ada}. Unresolved placeholders are stripped.
func ResolvePlaceholders(template string, r *Result) string {
	if template == "" {
		return buildDefaultReply(r)
	}

	replacements := map[string]string{
		"{indicator}": r.Indicator.Label,
		"{area}":      r.Area,
		"{count}":     FormatInt(r.TotalDesa),
	}
	if r.Summary != nil {
		replacements["{dominant}"] = r.Summary.DominantLabel
		replacements["{percent}"] = FormatPercent(r.Summary.PercentDominant)
	}
	if r.Quant != nil {
		replacements["{total}"] = FormatNumber(r.Quant.Total)
		replacements["{max}"] = FormatNumber(r.Quant.Max)
		replacements["{min}"] = FormatNumber(r.Quant.Min)
		replacements["{mean}"] = FormatNumber(RoundTo2(r.Quant.Mean))
	}
	if r.Ranking != nil {
		replacements["{ada}"] = FormatInt(r.Ranking.DistributionData.Ada)
		replacements["{tidak_ada}"] = FormatInt(r.Ranking.DistributionData.TidakAda)
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return stripUnresolvedPlaceholders(result)
}

func buildDefaultReply(r *Result) string {
	switch {
	case r.Summary != nil && r.Summary.DesaDenganData == 0:
		return fmt.Sprintf("Belum ada data %s di %s.", r.Indicator.Label, r.Area)
	case r.Summary != nil:
		return fmt.Sprintf("%s: mayoritas %s (%s dari %s desa dengan data) di %s.",
			r.Indicator.Label, r.Summary.DominantLabel, FormatPercent(r.Summary.PercentDominant),
			FormatInt(r.Summary.DesaDenganData), r.Area)
	case r.Quant != nil && r.Ranking != nil:
		return fmt.Sprintf("%s: total %s di %s, tersedia di %s dari %s desa.",
			r.Indicator.Label, FormatNumber(r.Quant.Total), r.Area,
			FormatInt(r.Ranking.DistributionData.Ada), FormatInt(r.TotalDesa))
	}
	return fmt.Sprintf("%s desa di %s.", FormatInt(r.TotalDesa), r.Area)
}

func areaLabel(kecamatan []string) string {
	names := dedupe(kecamatan, 0)
	if len(names) == 0 {
		return "Kota Batu"
	}
	return "Kecamatan " + strings.Join(names, ", ")
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " .,:-")
	if cleaned == "" {
		return text
	}
	return cleaned
}
