package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
)

func testView() engine.RecordView {
	row := func(id, desa, kec string, tk, sd float64, sinyal string) engine.VillageRecord {
		return engine.NewVillageRecord(id, desa, kec, map[string]engine.Value{
			"jumlah_tk":       engine.Number(tk),
			"jumlah_sd":       engine.Number(sd),
			"kekuatan_sinyal": engine.ParseString(sinyal),
		})
	}
	return engine.NewSliceView([]engine.VillageRecord{
		row("3579011001", "Oro-Oro Ombo", "BATU", 3, 4, "Kuat"),
		row("3579011002", "Temas", "BATU", 5, 2, "Sangat Kuat"),
		row("3579021001", "Bumiaji", "BUMIAJI", 0, 1, "Lemah"),
		row("3579031001", "Junrejo", "JUNREJO", 1, 0, ""),
	})
}

func TestDashboardPage(t *testing.T) {
	reg := schema.MustLoad()

	var buf bytes.Buffer
	require.NoError(t, DashboardPage(&buf, testView(), reg, "infrastruktur"))
	html := buf.String()

	assert.Contains(t, html, "PODES 2024 Kota Batu")
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "per Kecamatan")
	assert.Contains(t, html, "#66BB6A", "value colors reach the donut")
}

func TestDashboardPage_Errors(t *testing.T) {
	reg := schema.MustLoad()
	var buf bytes.Buffer

	assert.ErrorIs(t, DashboardPage(&buf, testView(), reg, "olahraga"), schema.ErrUnknownCategory)
	assert.ErrorIs(t, DashboardPage(&buf, engine.NewSliceView(nil), reg, "semua"), ErrNoData)
	assert.Error(t, DashboardPage(&buf, testView(), nil, "semua"))
}

func TestChartFromConfig(t *testing.T) {
	assert.Nil(t, chartFromConfig(nil))
	assert.Nil(t, chartFromConfig(&engine.ChartConfig{ChartType: "donut"}))
	assert.Nil(t, chartFromConfig(&engine.ChartConfig{
		ChartType: "radar",
		Series:    []engine.ChartSeries{{Name: "x"}},
	}))

	cfg := engine.StackedBarChart("Sinyal per Kecamatan", []engine.ChartSeries{
		{Name: "Kuat", Data: []engine.ChartPoint{{Label: "BATU", Value: 1}}, Color: "#66BB6A"},
	})
	assert.NotNil(t, chartFromConfig(cfg))
}

func TestRankedBarPNG(t *testing.T) {
	var buf bytes.Buffer
	err := RankedBarPNG(&buf, []engine.ChartPoint{
		{Label: "Kuat", Value: 12},
		{Label: "Lemah", Value: 4},
		{Label: "Tidak Ada Sinyal", Value: 0},
	}, "Kekuatan Sinyal")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "\x89PNG"))

	assert.ErrorIs(t, RankedBarPNG(&buf, nil, "x"), ErrNoData)
}

func TestStackedBarPNG(t *testing.T) {
	groups := []string{"BATU", "BUMIAJI", "JUNREJO"}
	series := []engine.ChartSeries{
		{Name: "Ada", Color: engine.ColorAda, Data: []engine.ChartPoint{{Label: "BATU", Value: 5}, {Label: "BUMIAJI", Value: 3}, {Label: "JUNREJO", Value: 6}}},
		{Name: "Tidak Ada", Color: "not-a-color", Data: []engine.ChartPoint{{Label: "BATU", Value: 3}, {Label: "BUMIAJI", Value: 6}, {Label: "JUNREJO", Value: 1}}},
	}

	var buf bytes.Buffer
	require.NoError(t, StackedBarPNG(&buf, series, groups, "Puskesmas per Kecamatan"))
	assert.True(t, strings.HasPrefix(buf.String(), "\x89PNG"))

	assert.ErrorIs(t, StackedBarPNG(&buf, nil, groups, "x"), ErrNoData)
	assert.ErrorContains(t, StackedBarPNG(&buf, series, groups[:2], "x"), "points")
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x66, G: 0xBB, B: 0x6A, A: 0xFF}, hexColor("#66BB6A", 0))
	assert.Equal(t, color.RGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF}, hexColor("", 1), "palette fallback")
}
