package schema

import (
	"errors"

	"github.com/spektr-org/podes/engine"
)

// ============================================================================
// SCHEMA — Category registry and dataset shape
// ============================================================================
// The registry tells the engine which survey fields exist, how to read them
// and how to group them into dashboard categories. Discovery describes the
// columns of a raw village export.
// ============================================================================

// Sentinel errors.
var (
	ErrUnknownCategory  = errors.New("schema: unknown category")
	ErrUnknownIndicator = errors.New("schema: unknown indicator")
	ErrInvalidRegistry  = errors.New("schema: invalid registry")
)

// AllCategoryKey is the synthetic category holding every indicator.
const AllCategoryKey = "semua"

// CategoryKind drives rendering: facilities categories show rankings and
// totals, status categories show donuts, mixed ones show both.
type CategoryKind string

const (
	KindFacilities CategoryKind = "facilities"
	KindStatus     CategoryKind = "status"
	KindMixed      CategoryKind = "mixed"
)

// Category groups indicators under one dashboard section.
type Category struct {
	Key        string             `json:"key" yaml:"key"`
	Title      string             `json:"title" yaml:"title"`
	Icon       string             `json:"icon,omitempty" yaml:"icon"`
	Color      string             `json:"color,omitempty" yaml:"color"`
	Kind       CategoryKind       `json:"kind" yaml:"-"`
	Indicators []engine.Indicator `json:"indicators" yaml:"indicators"`
}

// Quantitative returns the category's quantitative indicators.
func (c Category) Quantitative() []engine.Indicator { return c.filter(engine.Quantitative) }

// Qualitative returns the category's qualitative indicators.
func (c Category) Qualitative() []engine.Indicator { return c.filter(engine.Qualitative) }

func (c Category) filter(t engine.IndicatorType) []engine.Indicator {
	var out []engine.Indicator
	for _, ind := range c.Indicators {
		if ind.Type == t {
			out = append(out, ind)
		}
	}
	return out
}

// kindOf derives the category kind from its indicator types.
func kindOf(indicators []engine.Indicator) CategoryKind {
	var quant, qual bool
	for _, ind := range indicators {
		if ind.IsQuantitative() {
			quant = true
		} else {
			qual = true
		}
	}
	switch {
	case quant && !qual:
		return KindFacilities
	case qual && !quant:
		return KindStatus
	}
	return KindMixed
}

// ============================================================================
// DISCOVERY TYPES
// ============================================================================

// ColumnRole classifies a discovered column.
type ColumnRole string

const (
	RoleIdentity     ColumnRole = "identity"
	RoleQuantitative ColumnRole = "quantitative"
	RoleQualitative  ColumnRole = "qualitative"
	RoleSkipped      ColumnRole = "skipped"
)

// Column describes one column of a village export.
type Column struct {
	Header       string     `json:"header"`
	Key          string     `json:"key"`
	Index        int        `json:"index"`
	Role         ColumnRole `json:"role"`
	Present      int        `json:"present"`
	Distinct     int        `json:"distinct"`
	SampleValues []string   `json:"sampleValues,omitempty"`
	SkipReason   string     `json:"skipReason,omitempty"`
	Registered   bool       `json:"registered"` // known to the registry
}

// Discovery is the classified shape of a village export.
type Discovery struct {
	Name         string   `json:"name"`
	Rows         int      `json:"rows"`
	Columns      []Column `json:"columns"`
	DiscoveredAt string   `json:"discoveredAt"`
}

// Keys returns the keys of columns with the given role.
func (d Discovery) Keys(role ColumnRole) []string {
	var keys []string
	for _, c := range d.Columns {
		if c.Role == role {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Column returns the column with the given key.
func (d Discovery) Column(key string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}
