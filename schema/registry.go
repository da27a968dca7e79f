package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/spektr-org/podes/engine"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// REGISTRY — Categories and indicators loaded from YAML
// ============================================================================
// Built once at start, validated, then read-only. Accessors and category
// kinds are resolved here so nothing downstream matches on names.
// ============================================================================

//go:embed registry.yaml
var defaultRegistry []byte

// Registry holds the ordered categories and an indicator index.
type Registry struct {
	categories []Category
	indicators []engine.Indicator
	byKey      map[string]int
	byCategory map[string]int
}

type registryFile struct {
	Categories []Category `yaml:"categories"`
}

// Load builds the registry shipped with the binary.
func Load() (*Registry, error) {
	return Parse(defaultRegistry)
}

// MustLoad is Load for package-level initialization; it panics on error.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadFile builds a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML registry document, fills defaults and validates it.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}

	r := &Registry{
		byKey:      make(map[string]int),
		byCategory: make(map[string]int),
	}
	for _, cat := range file.Categories {
		for i := range cat.Indicators {
			cat.Indicators[i] = withDefaults(cat.Indicators[i])
		}
		cat.Kind = kindOf(cat.Indicators)
		r.categories = append(r.categories, cat)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	for ci, cat := range r.categories {
		r.byCategory[cat.Key] = ci
		for _, ind := range cat.Indicators {
			r.byKey[ind.Key] = len(r.indicators)
			r.indicators = append(r.indicators, ind)
		}
	}
	return r, nil
}

// withDefaults fills the data key, chart kind and accessor.
func withDefaults(ind engine.Indicator) engine.Indicator {
	ind.Key = strings.TrimSpace(ind.Key)
	if ind.DataKey == "" {
		ind.DataKey = ind.Key
	}
	switch ind.Type {
	case engine.Quantitative:
		if ind.Chart == "" {
			ind.Chart = engine.ChartHistogram
		}
		ind.Accessor = engine.QuantitativeAccessor(ind.DataKey)
	case engine.Qualitative:
		if ind.Chart == "" {
			ind.Chart = engine.ChartDonut
		}
		ind.Accessor = engine.QualitativeAccessor(ind.DataKey)
	}
	return ind
}

// Validate checks key uniqueness, indicator types, chart kinds and bins.
// All problems are reported together.
func (r *Registry) Validate() error {
	var problems []string
	seenCat := make(map[string]bool)
	seenInd := make(map[string]string)

	for _, cat := range r.categories {
		switch {
		case cat.Key == "":
			problems = append(problems, "category with empty key")
		case cat.Key == AllCategoryKey:
			problems = append(problems, fmt.Sprintf("category key %q is reserved", AllCategoryKey))
		case seenCat[cat.Key]:
			problems = append(problems, fmt.Sprintf("duplicate category %q", cat.Key))
		}
		seenCat[cat.Key] = true
		if len(cat.Indicators) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no indicators", cat.Key))
		}

		for _, ind := range cat.Indicators {
			if ind.Key == "" {
				problems = append(problems, fmt.Sprintf("category %q: indicator with empty key", cat.Key))
				continue
			}
			if prev, dup := seenInd[ind.Key]; dup {
				problems = append(problems, fmt.Sprintf("duplicate indicator %q (in %s and %s)", ind.Key, prev, cat.Key))
			}
			seenInd[ind.Key] = cat.Key
			if ind.Label == "" {
				problems = append(problems, fmt.Sprintf("indicator %q: empty label", ind.Key))
			}
			problems = append(problems, checkIndicator(ind)...)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRegistry, strings.Join(problems, "; "))
	}
	return nil
}

func checkIndicator(ind engine.Indicator) []string {
	var problems []string
	switch ind.Type {
	case engine.Quantitative:
		if ind.Chart != engine.ChartHistogram && ind.Chart != engine.ChartBinary {
			problems = append(problems, fmt.Sprintf("indicator %q: chart %q not valid for quantitative", ind.Key, ind.Chart))
		}
	case engine.Qualitative:
		if ind.Chart != engine.ChartDonut {
			problems = append(problems, fmt.Sprintf("indicator %q: chart %q not valid for qualitative", ind.Key, ind.Chart))
		}
		if len(ind.Bins) > 0 {
			problems = append(problems, fmt.Sprintf("indicator %q: bins on a qualitative indicator", ind.Key))
		}
	default:
		problems = append(problems, fmt.Sprintf("indicator %q: unknown type %q", ind.Key, ind.Type))
	}
	for i := 1; i < len(ind.Bins); i++ {
		if ind.Bins[i] <= ind.Bins[i-1] {
			problems = append(problems, fmt.Sprintf("indicator %q: bins not strictly ascending", ind.Key))
			break
		}
	}
	return problems
}

// ============================================================================
// LOOKUPS
// ============================================================================

// Categories returns the registered categories in document order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Category returns a category by key. "semua" yields All().
func (r *Registry) Category(key string) (Category, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == AllCategoryKey {
		return r.All(), nil
	}
	i, ok := r.byCategory[key]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return r.categories[i], nil
}

// All is the synthetic category holding every indicator.
func (r *Registry) All() Category {
	return Category{
		Key:        AllCategoryKey,
		Title:      "Semua Indikator",
		Icon:       "dashboard",
		Kind:       kindOf(r.indicators),
		Indicators: r.Indicators(),
	}
}

// Indicator implements engine.IndicatorLookup.
func (r *Registry) Indicator(key string) (engine.Indicator, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return engine.Indicator{}, false
	}
	return r.indicators[i], true
}

// Indicators returns every indicator in category order.
func (r *Registry) Indicators() []engine.Indicator {
	out := make([]engine.Indicator, len(r.indicators))
	copy(out, r.indicators)
	return out
}

// Resolve returns the registered indicator or a fallback built from key.
func (r *Registry) Resolve(key string) engine.Indicator {
	return engine.ResolveIndicator(r, key)
}

// Lookup is Indicator returning ErrUnknownIndicator when key is not
// registered.
func (r *Registry) Lookup(key string) (engine.Indicator, error) {
	ind, ok := r.Indicator(key)
	if !ok {
		return engine.Indicator{}, fmt.Errorf("%w: %q", ErrUnknownIndicator, key)
	}
	return ind, nil
}

// IsRegistered reports whether key names a registry indicator.
func (r *Registry) IsRegistered(key string) bool {
	_, ok := r.byKey[key]
	return ok
}
