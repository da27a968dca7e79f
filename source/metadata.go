package source

import (
	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
)

// KecamatanInfo is one district with its village count.
type KecamatanInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryInfo lists a category and its indicator labels.
type CategoryInfo struct {
	Key        string              `json:"key"`
	Title      string              `json:"title"`
	Icon       string              `json:"icon,omitempty"`
	Kind       schema.CategoryKind `json:"kind"`
	Indicators []IndicatorInfo     `json:"indicators"`
}

// IndicatorInfo is the filter-population view of an indicator.
type IndicatorInfo struct {
	Key   string               `json:"key"`
	Label string               `json:"label"`
	Type  engine.IndicatorType `json:"type"`
}

// Metadata is the body of /api/villages/metadata.
type Metadata struct {
	Total      int             `json:"total"`
	Kecamatan  []KecamatanInfo `json:"kecamatan"`
	Categories []CategoryInfo  `json:"categories"`
	Fields     []string        `json:"fields"`
}

// BuildMetadata summarizes the row set for filter population. Districts
// follow canonical order. reg may be nil.
func BuildMetadata(rows []engine.VillageRecord, reg *schema.Registry) Metadata {
	view := engine.NewSliceView(rows)
	groups := engine.GroupByField(view, engine.FieldKecamatan)
	engine.SortGroups(groups, engine.CanonicalKecamatan)

	md := Metadata{
		Total:      len(rows),
		Kecamatan:  make([]KecamatanInfo, 0, len(groups)),
		Categories: []CategoryInfo{},
		Fields:     view.FieldKeys(),
	}
	if md.Fields == nil {
		md.Fields = []string{}
	}
	for _, g := range groups {
		md.Kecamatan = append(md.Kecamatan, KecamatanInfo{Name: g.Label, Count: g.Count})
	}

	if reg == nil {
		return md
	}
	for _, cat := range reg.Categories() {
		info := CategoryInfo{Key: cat.Key, Title: cat.Title, Icon: cat.Icon, Kind: cat.Kind}
		for _, ind := range cat.Indicators {
			info.Indicators = append(info.Indicators, IndicatorInfo{Key: ind.Key, Label: ind.Label, Type: ind.Type})
		}
		md.Categories = append(md.Categories, info)
	}
	return md
}
