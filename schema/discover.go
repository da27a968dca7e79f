package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spektr-org/podes/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Village export column classification
// ============================================================================
// Inspects a PODES CSV export and classifies each column:
//   1. Header → snake_case key, identity aliases folded to canonical keys
//   2. Registered indicators take their type from the registry
//   3. Other columns: ≥80% numeric → quantitative, else qualitative
//   4. Empty or free-text-per-row columns are skipped with a reason
// ============================================================================

// ErrMissingIdentity is returned when an export has no village ID column.
var ErrMissingIdentity = errors.New("schema: export has no id_desa column")

// identityAliases folds common export headers onto the record identity keys.
var identityAliases = map[string]string{
	"id_desa":        engine.FieldID,
	"kode_desa":      engine.FieldID,
	"kode_wilayah":   engine.FieldID,
	"iddesa":         engine.FieldID,
	"nama_desa":      engine.FieldDesa,
	"desa":           engine.FieldDesa,
	"desa_kelurahan": engine.FieldDesa,
	"nama_kecamatan": engine.FieldKecamatan,
	"kecamatan":      engine.FieldKecamatan,
}

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int       // Max rows to inspect (0 = all)
	Name       string    // Dataset name, default "PODES 2024"
	Registry   *Registry // Registered columns take their type from here
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{Name: "PODES 2024"}
}

// DiscoverFromCSV classifies the columns of a village CSV export.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Discovery, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
		if opt.Name == "" {
			opt.Name = DefaultDiscoverOptions().Name
		}
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	var rows [][]string
	for opt.SampleSize <= 0 || len(rows) < opt.SampleSize {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	d := &Discovery{
		Name:         opt.Name,
		Rows:         len(rows),
		DiscoveredAt: time.Now().Format(time.RFC3339),
	}
	seen := make(map[string]bool)
	for i, h := range headers {
		col := analyzeColumn(h, i, rows, opt.Registry)
		if seen[col.Key] {
			col.Role = RoleSkipped
			col.SkipReason = fmt.Sprintf("Duplicate column key %q", col.Key)
		}
		seen[col.Key] = true
		d.Columns = append(d.Columns, col)
	}

	if c, ok := d.Column(engine.FieldID); !ok || c.Role != RoleIdentity {
		return d, ErrMissingIdentity
	}
	return d, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

func analyzeColumn(header string, index int, rows [][]string, reg *Registry) Column {
	key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	if canonical, ok := identityAliases[key]; ok {
		key = canonical
	}
	col := Column{Header: header, Key: key, Index: index}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) || IsEmptyCell(row[index]) {
			continue
		}
		val := strings.TrimSpace(row[index])
		values = append(values, val)
		uniqueSet[val] = true
	}
	col.Present = len(values)
	col.Distinct = len(uniqueSet)
	col.SampleValues = collectSamples(uniqueSet, 10)

	switch key {
	case engine.FieldID, engine.FieldDesa, engine.FieldKecamatan:
		col.Role = RoleIdentity
		return col
	}

	if reg != nil {
		if ind, ok := reg.Indicator(key); ok {
			col.Registered = true
			col.Role = RoleQualitative
			if ind.IsQuantitative() {
				col.Role = RoleQuantitative
			}
			return col
		}
	}

	if len(values) == 0 {
		col.Role = RoleSkipped
		col.SkipReason = "All values are empty"
		return col
	}
	col.classifyRole(values)
	return col
}

// classifyRole picks quantitative vs qualitative vs skip for an
// unregistered column.
func (col *Column) classifyRole(values []string) {
	numCount := 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
	}
	if numCount >= int(float64(len(values))*0.8) && numCount > 0 {
		col.Role = RoleQuantitative
		return
	}
	if col.Distinct == len(values) && len(values) > 10 {
		col.Role = RoleSkipped
		col.SkipReason = "Unique per row, likely free text"
		return
	}
	col.Role = RoleQualitative
}

// Parse converts a raw cell according to the column role. Skipped columns
// yield absent.
func (c Column) Parse(raw string) engine.Value {
	if IsEmptyCell(raw) {
		return engine.Absent()
	}
	switch c.Role {
	case RoleQuantitative:
		return engine.ParseNumber(raw)
	case RoleQualitative, RoleIdentity:
		return engine.ParseString(raw)
	}
	return engine.Absent()
}

// IsEmptyCell reports whether a raw export cell carries no data.
func IsEmptyCell(s string) bool {
	if engine.ParseString(s).IsAbsent() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "n/a", "nan":
		return true
	}
	return false
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Nama Desa" or "namaDesa" → "nama_desa".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = strings.ToLower(result.String())
	s = strings.NewReplacer(" ", "_", "-", "_", "/", "_", ".", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
