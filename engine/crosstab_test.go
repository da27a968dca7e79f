package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPerGroupCrossTab_Qualitative(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(sampleVillages()), "kekuatan_sinyal", FieldKecamatan)

	assert.Equal(t, []string{"BATU", "BUMIAJI", "JUNREJO"}, ct.Groups)
	require.Len(t, ct.Series, 3)
	assert.Equal(t, CrossTabSeries{Name: "Kuat", Data: []int{1, 1, 0}}, ct.Series[0])
	assert.Equal(t, CrossTabSeries{Name: "Lemah", Data: []int{0, 1, 0}}, ct.Series[1])
	assert.Equal(t, CrossTabSeries{Name: "Sangat Kuat", Data: []int{1, 0, 0}}, ct.Series[2])
}

func TestBuildPerGroupCrossTab_DenseAndSumsToPresentValues(t *testing.T) {
	view := NewSliceView(sampleVillages())
	ct := BuildPerGroupCrossTab(view, "kekuatan_sinyal", FieldKecamatan)

	sum := 0
	for _, s := range ct.Series {
		require.Len(t, s.Data, len(ct.Groups))
		for _, n := range s.Data {
			sum += n
		}
	}
	assert.Equal(t, BuildCategoryCounts(view, "kekuatan_sinyal").Total(), sum)
	assert.Equal(t, 1, ct.Cell("BUMIAJI", "Lemah"))
	assert.Equal(t, 0, ct.Cell("JUNREJO", "Kuat"))
	assert.Equal(t, 0, ct.Cell("MALANG", "Kuat"))
}

func TestBuildPerGroupCrossTab_NormalizeEmpty(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(sampleVillages()), "kekuatan_sinyal", FieldKecamatan, WithNormalizeEmpty(true))

	require.Len(t, ct.Series, 4)
	last := ct.Series[3]
	assert.Equal(t, TidakTerdefinisi, last.Name)
	assert.Equal(t, []int{0, 0, 1}, last.Data)
}

func TestBuildPerGroupCrossTab_GroupOrdering(t *testing.T) {
	rows := append(sampleVillages(),
		village("9", "Tegalweru", "DAU", map[string]any{"kekuatan_sinyal": "Kuat"}),
		village("10", "Tanpa Kecamatan", "", map[string]any{"kekuatan_sinyal": "Kuat"}),
	)
	ct := BuildPerGroupCrossTab(NewSliceView(rows), "kekuatan_sinyal", FieldKecamatan)

	assert.Equal(t, []string{"BATU", "BUMIAJI", "JUNREJO", "DAU", TidakTerdefinisi}, ct.Groups)
	assert.Equal(t, []int{1, 1, 0, 1, 1}, ct.Series[0].Data)
}

func TestBuildPerGroupCrossTab_QuantitativeBins(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(sampleVillages()), "jumlah_tk", FieldKecamatan, WithBins([]int{0, 1, 2}))

	names := make([]string, len(ct.Series))
	for i, s := range ct.Series {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"0", "1", "2", "2+"}, names)
	assert.Equal(t, []int{0, 1, 1}, ct.Series[0].Data)
	assert.Equal(t, []int{2, 1, 0}, ct.Series[3].Data)
}

func TestBuildPerGroupCrossTab_FixedCategories(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(sampleVillages()), "kekuatan_sinyal", FieldKecamatan,
		WithCategories([]string{"Sangat Kuat", "Kuat", "Tidak Ada Sinyal"}))

	require.Len(t, ct.Series, 3)
	assert.Equal(t, "Sangat Kuat", ct.Series[0].Name)
	assert.Equal(t, []int{0, 0, 0}, ct.Series[2].Data)
	total := 0
	for _, c := range ct.Totals() {
		total += c.Count
	}
	assert.Equal(t, 3, total, "Lemah is outside the fixed list")
}

func TestBuildPerGroupCrossTab_Empty(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(nil), "jumlah_tk", FieldKecamatan, WithBins(DefaultBins))
	assert.Empty(t, ct.Groups)
	assert.Len(t, ct.Series, 7)
	for _, s := range ct.Series {
		assert.NotNil(t, s.Data)
		assert.Empty(t, s.Data)
	}
}

func TestCrossTab_GroupTotals(t *testing.T) {
	ct := BuildPerGroupCrossTab(NewSliceView(sampleVillages()), "kekuatan_sinyal", FieldKecamatan)
	assert.Equal(t, []LabeledCount{{"BATU", 2}, {"BUMIAJI", 2}, {"JUNREJO", 0}}, ct.GroupTotals())
}
