package engine

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// PODES ENGINE TYPES — Village survey analytics
// ============================================================================
// One VillageRecord per desa. Identity columns are typed fields, every
// indicator lives in Fields keyed by its data key.
// ============================================================================

// Identity column keys shared by every data source.
const (
	FieldID        = "id_desa"
	FieldDesa      = "nama_desa"
	FieldKecamatan = "nama_kecamatan"
)

// Display constants.
const (
	NoData           = "-"
	TidakTerdefinisi = "Tidak Terdefinisi"
	LabelAda         = "Ada"
	LabelTidakAda    = "Tidak Ada"
)

// CanonicalKecamatan is the fixed district order for Kota Batu.
var CanonicalKecamatan = []string{"BATU", "BUMIAJI", "JUNREJO"}

// DefaultBins are the histogram lower bounds used when an indicator has none.
var DefaultBins = []int{0, 1, 2, 3, 4, 5}

// ============================================================================
// VILLAGE RECORD
// ============================================================================

// VillageRecord is one survey row. Fields never holds the identity keys.
type VillageRecord struct {
	ID        string
	Desa      string
	Kecamatan string
	Fields    map[string]Value
}

// NewVillageRecord builds a record, copying fields.
func NewVillageRecord(id, desa, kecamatan string, fields map[string]Value) VillageRecord {
	r := VillageRecord{
		ID:        strings.TrimSpace(id),
		Desa:      strings.TrimSpace(desa),
		Kecamatan: strings.TrimSpace(kecamatan),
		Fields:    make(map[string]Value, len(fields)),
	}
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

// RecordFromMap builds a record from a decoded JSON object, SQL row or
// BSON document.
func RecordFromMap(m map[string]any) VillageRecord {
	r := VillageRecord{Fields: make(map[string]Value, len(m))}
	for k, raw := range m {
		r.Set(k, ParseValue(raw))
	}
	return r
}

// Set stores a field. Identity keys go to their typed slots.
func (r *VillageRecord) Set(key string, v Value) {
	switch key {
	case FieldID:
		r.ID = v.Label()
	case FieldDesa:
		r.Desa = v.Label()
	case FieldKecamatan:
		r.Kecamatan = v.Label()
	default:
		if r.Fields == nil {
			r.Fields = make(map[string]Value)
		}
		r.Fields[key] = v
	}
}

// Field returns the raw value stored under key. Identity keys resolve to
// text values; unknown keys are absent.
func (r VillageRecord) Field(key string) Value {
	switch key {
	case FieldID:
		return ParseString(r.ID)
	case FieldDesa:
		return ParseString(r.Desa)
	case FieldKecamatan:
		return ParseString(r.Kecamatan)
	}
	if r.Fields == nil {
		return Absent()
	}
	return r.Fields[key]
}

// Keys returns the indicator field keys, sorted.
func (r VillageRecord) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON flattens the record into a single object.
func (r VillageRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[FieldID] = r.ID
	out[FieldDesa] = r.Desa
	out[FieldKecamatan] = r.Kecamatan
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object. Numeric ids keep their digits.
func (r *VillageRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = RecordFromMap(m)
	return nil
}

// ============================================================================
// INDICATOR
// ============================================================================

// IndicatorType tells how an indicator is aggregated.
type IndicatorType string

const (
	Quantitative IndicatorType = "quantitative"
	Qualitative  IndicatorType = "qualitative"
)

// ChartKind is the preferred visualization of an indicator.
type ChartKind string

const (
	ChartDonut     ChartKind = "donut"
	ChartHistogram ChartKind = "histogram"
	ChartBinary    ChartKind = "binary"
)

// Accessor extracts an indicator value from a record. Read through
// Indicator.Value, which defaults absent values to 0 or "-" by type.
type Accessor func(VillageRecord) Value

// Indicator describes one survey question.
type Indicator struct {
	Key         string            `json:"key" yaml:"key"`
	Label       string            `json:"label" yaml:"label"`
	DataKey     string            `json:"dataKey" yaml:"data_key"`
	Type        IndicatorType     `json:"type" yaml:"type"`
	Icon        string            `json:"icon,omitempty" yaml:"icon"`
	Color       string            `json:"color,omitempty" yaml:"color"`
	ValueColors map[string]string `json:"valueColors,omitempty" yaml:"value_colors"`
	Bins        []int             `json:"bins,omitempty" yaml:"bins"`
	Chart       ChartKind         `json:"chart,omitempty" yaml:"chart"`
	Fallback    bool              `json:"fallback,omitempty" yaml:"-"`
	Accessor    Accessor          `json:"-" yaml:"-"`
}

// IsQuantitative reports whether the indicator counts things.
func (ind Indicator) IsQuantitative() bool { return ind.Type == Quantitative }

// Value reads the indicator from a record, applying the type default when
// the cell is absent.
func (ind Indicator) Value(r VillageRecord) Value {
	var v Value
	if ind.Accessor != nil {
		v = ind.Accessor(r)
	} else {
		v = r.Field(ind.DataKey)
	}
	if !v.IsAbsent() {
		return v
	}
	if ind.IsQuantitative() {
		return Number(0)
	}
	return Text(NoData)
}

// EffectiveBins returns the histogram bins, falling back to DefaultBins.
func (ind Indicator) EffectiveBins() []int {
	if len(ind.Bins) == 0 {
		return DefaultBins
	}
	return ind.Bins
}

// QuantitativeAccessor reads dataKey as a number, 0 when missing or not numeric.
func QuantitativeAccessor(dataKey string) Accessor {
	return func(r VillageRecord) Value {
		f, _ := r.Field(dataKey).Float()
		return Number(f)
	}
}

// QualitativeAccessor reads dataKey as text, "-" when missing.
func QualitativeAccessor(dataKey string) Accessor {
	return func(r VillageRecord) Value {
		v := r.Field(dataKey)
		if v.IsAbsent() {
			return Text(NoData)
		}
		return Text(v.Label())
	}
}

// IdentityAccessor returns the raw field value.
func IdentityAccessor(dataKey string) Accessor {
	return func(r VillageRecord) Value { return r.Field(dataKey) }
}

// IndicatorLookup resolves indicator keys. The schema registry implements it.
type IndicatorLookup interface {
	Indicator(key string) (Indicator, bool)
}

// FallbackIndicator synthesizes an indicator for a key no registry knows.
// The label is the key upper-cased with underscores as spaces.
func FallbackIndicator(key string) Indicator {
	return Indicator{
		Key:      key,
		Label:    cases.Upper(language.Indonesian).String(strings.ReplaceAll(key, "_", " ")),
		DataKey:  key,
		Type:     Quantitative,
		Chart:    ChartHistogram,
		Fallback: true,
		Accessor: IdentityAccessor(key),
	}
}

// ResolveIndicator looks key up, synthesizing a fallback when unknown.
func ResolveIndicator(lookup IndicatorLookup, key string) Indicator {
	if lookup != nil {
		if ind, ok := lookup.Indicator(key); ok {
			return ind
		}
	}
	return FallbackIndicator(key)
}

// inferType settles the type of a fallback indicator from observed values:
// any present non-numeric value makes it qualitative.
func inferType(ind Indicator, view RecordView) Indicator {
	if !ind.Fallback || view == nil {
		return ind
	}
	for i := 0; i < view.Len(); i++ {
		v := view.Row(i).Field(ind.DataKey)
		if v.IsAbsent() {
			continue
		}
		if _, ok := v.Float(); !ok {
			ind.Type = Qualitative
			ind.Chart = ChartDonut
			return ind
		}
	}
	return ind
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is a set of rows sharing one value of a grouping field.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DonutSlice is one slice of a donut or binary chart.
type DonutSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
