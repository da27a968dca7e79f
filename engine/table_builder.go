package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData for comparison and ranking output
// ============================================================================
// Tables carry display strings; numbers are formatted Indonesian-style.
// ============================================================================

// BuildComparisonTable renders the summary as a table for text and
// spreadsheet output.
func BuildComparisonTable(res ComparisonResult) *TableData {
	columns := []Column{
		{Key: "rank", Label: "Peringkat", Type: "number", Align: "center"},
		{Key: "desa", Label: "Desa (Kecamatan)", Type: "text", Align: "left"},
	}
	for _, ind := range res.Indicators {
		col := Column{Key: ind.Key, Label: ind.Label, Type: "number", Align: "right"}
		if !ind.IsQuantitative() {
			col.Type, col.Align = "text", "left"
		}
		columns = append(columns, col)
	}
	if !res.HasQualitativeData {
		columns = append(columns,
			Column{Key: "total", Label: "Total", Type: "number", Align: "right"},
			Column{Key: "average", Label: "Rata-rata", Type: "number", Align: "right"},
		)
	}

	rows := make([][]string, 0, len(res.SummaryData))
	for _, r := range res.SummaryData {
		row := []string{fmt.Sprintf("%d", r.Rank), r.Village.DisplayName()}
		for _, ind := range res.Indicators {
			row = append(row, r.Values[ind.Key].OrDash())
		}
		if r.Total != nil {
			row = append(row, FormatNumber(*r.Total), FormatNumber(*r.Average))
		}
		rows = append(rows, row)
	}

	table := &TableData{
		Title:   "Ringkasan Perbandingan",
		Columns: columns,
		Rows:    rows,
	}
	if !res.HasQualitativeData && len(res.SummaryData) > 0 {
		values := make(map[string]string, len(res.Indicators))
		for _, s := range res.Series {
			var sum float64
			for _, v := range s.Data {
				sum += v.OrZero()
			}
			values[s.Key] = FormatNumber(sum)
		}
		table.Summary = &Summary{
			Label:  fmt.Sprintf("Total (%d desa)", len(res.SummaryData)),
			Values: values,
		}
	}
	return table
}

// BuildRankingTable renders a ranking as a table, top n rows (0 = all).
func BuildRankingTable(title string, ranking RankingResult, n int) *TableData {
	entries := ranking.Top(n)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.Desa,
			e.Kecamatan,
			FormatNumber(e.Value),
		})
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			{Key: "rank", Label: "Peringkat", Type: "number", Align: "center"},
			{Key: FieldDesa, Label: "Desa", Type: "text", Align: "left"},
			{Key: FieldKecamatan, Label: "Kecamatan", Type: "text", Align: "left"},
			{Key: "value", Label: "Jumlah", Type: "number", Align: "right"},
		},
		Rows: rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%d desa)", ranking.Statistics.TotalDesa),
			Values: map[string]string{
				"value":     FormatNumber(ranking.Statistics.Total),
				"tertinggi": FormatNumber(ranking.Statistics.Tertinggi),
				"terendah":  FormatNumber(ranking.Statistics.Terendah),
				"ada":       FormatInt(ranking.DistributionData.Ada),
				"tidak_ada": FormatInt(ranking.DistributionData.TidakAda),
			},
		},
	}
}
