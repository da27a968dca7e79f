package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Field-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL field constraints per record in one loop.
// Returns a SubView (index list into parent), zero data copy.
// ============================================================================

// Filters define which villages to include.
// Keys are field names ("nama_kecamatan", "id_desa", or any indicator key).
// OR within a field, AND across fields. Empty = all.
type Filters struct {
	Fields map[string][]string `json:"fields"`
}

// KecamatanFilter restricts rows to the given districts.
func KecamatanFilter(names ...string) Filters {
	return Filters{Fields: map[string][]string{FieldKecamatan: names}}
}

// HasFilter returns true if a specific field filter is set.
func (f Filters) HasFilter(field string) bool {
	if f.Fields == nil {
		return false
	}
	vals, ok := f.Fields[field]
	return ok && len(vals) > 0
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Fields {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of records matching all field filters.
// Matching is case-insensitive on the display label of the field.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if view == nil || filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for field, allowed := range filters.Fields {
		if len(allowed) > 0 {
			sets[field] = toLowerSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		row := view.Row(i)
		pass := true
		for field, set := range sets {
			val := strings.ToLower(row.Field(field).Label())
			if !set[val] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}
