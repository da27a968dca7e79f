package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExecute_RequiresIndicator(t *testing.T) {
	_, err := Execute(IndicatorQuery{Indicator: "  "}, NewSliceView(sampleVillages()), testLookup())
	assert.ErrorIs(t, err, ErrNoIndicator)
}

func TestExecute_Qualitative(t *testing.T) {
	res, err := Execute(IndicatorQuery{Indicator: "kekuatan_sinyal"}, NewSliceView(sampleVillages()), testLookup(),
		WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Empty)
	assert.Equal(t, 5, res.TotalDesa)
	assert.Equal(t, "Kota Batu", res.Area)

	require.NotNil(t, res.Summary)
	assert.Equal(t, "Kuat", res.Summary.DominantLabel)
	assert.Equal(t, 4, res.Summary.DesaDenganData)
	assert.Equal(t, 50.0, res.Summary.PercentDominant)
	assert.Nil(t, res.Quant)
	assert.Nil(t, res.Ranking)

	require.NotEmpty(t, res.Donut)
	assert.Equal(t, "Kuat", res.Donut[0].Label)
	assert.Equal(t, "#66BB6A", res.Donut[0].Color)
	assert.Equal(t, "Kuat", res.RankedBar[0].Label)

	require.NotNil(t, res.CrossTab)
	assert.Equal(t, []string{"BATU", "BUMIAJI", "JUNREJO"}, res.CrossTab.Groups)
	assert.Len(t, res.Stacked, len(res.CrossTab.Series))
	assert.Equal(t, "donut", res.ChartConfig.ChartType)
	assert.Equal(t, "stacked_bar", res.StackConfig.ChartType)
	assert.Contains(t, res.Reply, "Kuat")
}

func TestExecute_QualitativeNormalizeEmpty(t *testing.T) {
	res, err := Execute(IndicatorQuery{Indicator: "kekuatan_sinyal", NormalizeEmpty: true}, NewSliceView(sampleVillages()), testLookup())
	require.NoError(t, err)

	labels := make([]string, len(res.Donut))
	for i, s := range res.Donut {
		labels[i] = s.Label
	}
	assert.Contains(t, labels, TidakTerdefinisi)
	assert.Equal(t, 4, res.Summary.DesaDenganData, "summary still skips empty values")
}

func TestExecute_QuantitativeWithFilter(t *testing.T) {
	query := IndicatorQuery{Indicator: "jumlah_tk", Kecamatan: []string{"batu", "bumiaji"}}
	res, err := Execute(query, NewSliceView(sampleVillages()), testLookup())
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalDesa)
	assert.Equal(t, "Kecamatan batu, bumiaji", res.Area)
	require.NotNil(t, res.Quant)
	assert.Equal(t, 23.0, res.Quant.Total)
	assert.Equal(t, 3, res.Quant.Count)
	require.Len(t, res.Histogram, 7)
	assert.Equal(t, 1, res.Histogram[0].Count, "absent counts toward the first bucket")

	require.NotNil(t, res.Ranking)
	assert.Equal(t, "Temas", res.Ranking.RankingData[0].Desa)
	assert.Equal(t, BinarySplit{Ada: 3, TidakAda: 1}, res.Ranking.DistributionData)
	assert.Equal(t, 3.0, res.Ranking.Statistics.Terendah)
	assert.Len(t, res.Binary, 2)
	assert.Equal(t, "bar", res.ChartConfig.ChartType)
	assert.Equal(t, []string{"BATU", "BUMIAJI"}, res.CrossTab.Groups)
}

func TestExecute_EmptyAfterFilter(t *testing.T) {
	res, err := Execute(IndicatorQuery{Indicator: "jumlah_tk", Kecamatan: []string{"MALANG"}}, NewSliceView(sampleVillages()), testLookup())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.TotalDesa)
	assert.Contains(t, res.Reply, "Tidak ada data desa")

	require.NotNil(t, res.Quant)
	assert.Equal(t, QuantStats{}, *res.Quant)
	require.Len(t, res.Histogram, 7)
	for _, b := range res.Histogram {
		assert.Zero(t, b.Count, b.Bucket)
	}
	require.NotNil(t, res.CrossTab)
	assert.Empty(t, res.CrossTab.Groups)
	assert.Len(t, res.CrossTab.Series, 7)
	require.NotNil(t, res.Ranking)
	assert.Empty(t, res.Ranking.RankingData)
}

func TestExecute_EmptyAfterFilterQualitative(t *testing.T) {
	res, err := Execute(IndicatorQuery{Indicator: "kekuatan_sinyal", Kecamatan: []string{"MALANG"}}, NewSliceView(sampleVillages()), testLookup())
	require.NoError(t, err)
	assert.True(t, res.Empty)
	require.NotNil(t, res.Summary)
	assert.Equal(t, SummaryStats{DominantLabel: NoData}, *res.Summary)
	require.NotNil(t, res.CrossTab)
	assert.Empty(t, res.CrossTab.Groups)
}

func TestExecute_FallbackAndTemplate(t *testing.T) {
	rows := append(sampleVillages()[:2],
		village("x", "X", "JUNREJO", map[string]any{"jumlah_pasar": 2}))
	for i := range rows[:2] {
		rows[i].Set("jumlah_pasar", Number(1))
	}

	res, err := Execute(IndicatorQuery{Indicator: "jumlah_pasar", Reply: "{indicator}: {total} unit {unknown}", TopN: 1},
		NewSliceView(rows), testLookup())
	require.NoError(t, err)
	assert.True(t, res.Indicator.Fallback)
	assert.Equal(t, Quantitative, res.Indicator.Type)
	assert.Equal(t, "JUMLAH PASAR: 4 unit", res.Reply)
	assert.Len(t, res.Ranking.RankingData, 1)
}

func TestExecute_BinaryChartKind(t *testing.T) {
	lookup := testLookup()
	tk := lookup["jumlah_tk"]
	tk.Chart = ChartBinary
	lookup["jumlah_tk"] = tk

	res, err := Execute(IndicatorQuery{Indicator: "jumlah_tk"}, NewSliceView(sampleVillages()), lookup)
	require.NoError(t, err)
	assert.Equal(t, "donut", res.ChartConfig.ChartType)
	assert.Equal(t, LabelAda, res.ChartConfig.Series[0].Data[0].Label)
}

func TestResolvePlaceholders_StripsUnknown(t *testing.T) {
	r := &Result{Indicator: Indicator{Label: "TK"}, Area: "Kota Batu", TotalDesa: 3}
	assert.Equal(t, "TK di Kota Batu", ResolvePlaceholders("TK di {area} {dominant}.", r))
}
