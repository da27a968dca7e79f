package engine

import "sort"

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   SliceView: wraps []VillageRecord (sources, CSV, fixtures)
//   SubView: filtered subset (indices into parent, zero-copy)
// ============================================================================

// RecordView provides indexed access to village rows.
type RecordView interface {
	Len() int
	Row(index int) VillageRecord
	FieldKeys() []string // indicator keys present in at least one row
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a []VillageRecord slice as a RecordView.
type SliceView struct {
	records []VillageRecord
	keys    []string
}

// NewSliceView creates a RecordView from a slice. The slice is not copied.
func NewSliceView(records []VillageRecord) RecordView {
	v := &SliceView{records: records}
	v.cacheKeys()
	return v
}

func (v *SliceView) cacheKeys() {
	seen := make(map[string]bool)
	for _, r := range v.records {
		for k := range r.Fields {
			if !seen[k] {
				seen[k] = true
				v.keys = append(v.keys, k)
			}
		}
	}
	sort.Strings(v.keys)
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Row(i int) VillageRecord {
	if i < 0 || i >= len(v.records) {
		return VillageRecord{}
	}
	return v.records[i]
}

func (v *SliceView) FieldKeys() []string { return v.keys }

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent; no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Row(i int) VillageRecord {
	if i < 0 || i >= len(v.indices) {
		return VillageRecord{}
	}
	return v.parent.Row(v.indices[i])
}

func (v *SubView) FieldKeys() []string { return v.parent.FieldKeys() }

// ============================================================================
// HELPERS
// ============================================================================

// Rows materializes a view into a slice.
func Rows(view RecordView) []VillageRecord {
	if view == nil {
		return nil
	}
	out := make([]VillageRecord, view.Len())
	for i := range out {
		out[i] = view.Row(i)
	}
	return out
}

func viewLen(view RecordView) int {
	if view == nil {
		return 0
	}
	return view.Len()
}
