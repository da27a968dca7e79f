package helpers

import (
	"fmt"
	"io"

	"github.com/spektr-org/podes/engine"
	"github.com/xuri/excelize/v2"
)

// ComparisonSheet is the worksheet holding the comparison summary.
const ComparisonSheet = "Ringkasan Perbandingan"

// WriteComparisonXLSX writes the comparison summary as a workbook with the
// same layout as the CSV export. Numeric cells stay numeric.
func WriteComparisonXLSX(w io.Writer, res engine.ComparisonResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ComparisonSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := ComparisonHeader(res)
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ComparisonSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(ComparisonSheet, "A1", last, style)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetColWidth(ComparisonSheet, "A", "A", 10)
	_ = f.SetColWidth(ComparisonSheet, "B", lastCol, 22)

	for n, sr := range res.SummaryData {
		row := n + 2
		set := func(col int, v any) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(ComparisonSheet, cell, v)
		}
		if err := set(1, sr.Rank); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		_ = set(2, sr.Village.DisplayName())
		for i, ind := range res.Indicators {
			v := sr.Values[ind.Key]
			if v.IsNumber() {
				_ = set(i+3, v.OrZero())
			} else {
				_ = set(i+3, v.OrDash())
			}
		}
		if !res.HasQualitativeData {
			var total float64
			if sr.Total != nil {
				total = *sr.Total
			}
			_ = set(len(res.Indicators)+3, total)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
