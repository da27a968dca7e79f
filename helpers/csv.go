package helpers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
)

// ============================================================================
// CSV HELPER — Village ingestion and comparison export
// ============================================================================
// Village exports are classified with schema discovery, then each cell is
// parsed by its column role. The comparison export is the "Download Excel"
// table: numbers raw, text quoted.
// ============================================================================

// ParseVillagesCSV parses a PODES export into records. Rows without a
// village ID are dropped. reg may be nil.
func ParseVillagesCSV(data []byte, reg *schema.Registry) ([]engine.VillageRecord, *schema.Discovery, error) {
	disc, err := schema.DiscoverFromCSV(data, schema.DiscoverOptions{Registry: reg})
	if err != nil {
		return nil, disc, err
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return nil, disc, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var records []engine.VillageRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		rec := engine.NewVillageRecord("", "", "", nil)
		for _, col := range disc.Columns {
			if col.Role == schema.RoleSkipped || col.Index >= len(row) {
				continue
			}
			if v := col.Parse(row[col.Index]); !v.IsAbsent() {
				rec.Set(col.Key, v)
			}
		}
		if rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, disc, nil
}

// ParseVillagesView parses a PODES export into a RecordView.
func ParseVillagesView(data []byte, reg *schema.Registry) (engine.RecordView, error) {
	records, _, err := ParseVillagesCSV(data, reg)
	if err != nil {
		return nil, err
	}
	return engine.NewSliceView(records), nil
}

// ============================================================================
// COMPARISON EXPORT
// ============================================================================

// ComparisonFilename is the download name for a comparison export,
// e.g. "ringkasan_perbandingan_desa_2024-10-01.csv".
func ComparisonFilename(now time.Time, ext string) string {
	return fmt.Sprintf("ringkasan_perbandingan_desa_%s.%s", now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

// ComparisonHeader is the export header row. Total is present only when
// every indicator is quantitative.
func ComparisonHeader(res engine.ComparisonResult) []string {
	header := []string{"Peringkat", "Desa (Kecamatan)"}
	for _, ind := range res.Indicators {
		header = append(header, ind.Label)
	}
	if !res.HasQualitativeData {
		header = append(header, "Total")
	}
	return header
}

// exportCell is one cell of the comparison table with its quoting rule.
type exportCell struct {
	text   string
	quoted bool
}

// comparisonCells lays out the summary rows in ranked order.
func comparisonCells(res engine.ComparisonResult) [][]exportCell {
	rows := make([][]exportCell, 0, len(res.SummaryData))
	for _, r := range res.SummaryData {
		row := []exportCell{
			{text: strconv.Itoa(r.Rank)},
			{text: r.Village.DisplayName(), quoted: true},
		}
		for _, ind := range res.Indicators {
			v := r.Values[ind.Key]
			if v.IsNumber() {
				row = append(row, exportCell{text: fmtNum(v.OrZero())})
			} else {
				row = append(row, exportCell{text: v.OrDash(), quoted: true})
			}
		}
		if !res.HasQualitativeData {
			var total float64
			if r.Total != nil {
				total = *r.Total
			}
			row = append(row, exportCell{text: fmtNum(total)})
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteComparisonCSV writes the comparison summary as CSV.
func WriteComparisonCSV(w io.Writer, res engine.ComparisonResult) error {
	bw := bufio.NewWriter(w)
	header := ComparisonHeader(res)
	cells := make([]exportCell, len(header))
	for i, h := range header {
		cells[i] = exportCell{text: h, quoted: true}
	}
	writeCSVLine(bw, cells)
	for _, row := range comparisonCells(res) {
		writeCSVLine(bw, row)
	}
	return bw.Flush()
}

func writeCSVLine(w *bufio.Writer, cells []exportCell) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		if c.quoted || strings.ContainsAny(c.text, ",\"\r\n") {
			w.WriteByte('"')
			w.WriteString(strings.ReplaceAll(c.text, `"`, `""`))
			w.WriteByte('"')
		} else {
			w.WriteString(c.text)
		}
	}
	w.WriteString("\r\n")
}

// ComparisonExport is a comparison table read back from CSV.
type ComparisonExport struct {
	Header []string
	Rows   []ExportRow
}

// ExportRow is one village line of a comparison export.
type ExportRow struct {
	Rank    int
	Village string
	Values  []engine.Value
	Total   *float64
}

// ParseComparisonCSV reads a file written by WriteComparisonCSV.
func ParseComparisonCSV(r io.Reader) (*ComparisonExport, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read comparison CSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("comparison CSV has no header")
	}

	out := &ComparisonExport{Header: records[0]}
	hasTotal := out.Header[len(out.Header)-1] == "Total"
	nValues := len(out.Header) - 2
	if hasTotal {
		nValues--
	}

	for i, rec := range records[1:] {
		if len(rec) != len(out.Header) {
			return nil, fmt.Errorf("comparison CSV row %d: got %d fields, want %d", i+1, len(rec), len(out.Header))
		}
		rank, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("comparison CSV row %d: bad rank %q", i+1, rec[0])
		}
		row := ExportRow{Rank: rank, Village: rec[1]}
		for _, cell := range rec[2 : 2+nValues] {
			if v := engine.ParseNumber(cell); !v.IsAbsent() {
				row.Values = append(row.Values, v)
			} else {
				row.Values = append(row.Values, engine.ParseString(cell))
			}
		}
		if hasTotal {
			total, err := strconv.ParseFloat(rec[len(rec)-1], 64)
			if err != nil {
				return nil, fmt.Errorf("comparison CSV row %d: bad total %q", i+1, rec[len(rec)-1])
			}
			row.Total = &total
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// fmtNum renders whole numbers without decimals, others at full precision.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
