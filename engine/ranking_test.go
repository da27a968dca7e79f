package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingRows() RecordView {
	return NewSliceView([]VillageRecord{
		village("A", "Desa A", "BATU", map[string]any{"jumlah_posyandu": 3}),
		village("B", "Desa B", "BATU", map[string]any{"jumlah_posyandu": 10}),
		village("C", "Desa C", "BUMIAJI", map[string]any{"jumlah_posyandu": 10}),
		village("D", "Desa D", "JUNREJO", map[string]any{"jumlah_posyandu": 0}),
	})
}

func TestBuildRankingAndStats_OrderAndStats(t *testing.T) {
	res := BuildRankingAndStats(rankingRows(), QuantitativeAccessor("jumlah_posyandu"))

	require.Len(t, res.RankingData, 4)
	order := make([]string, 4)
	for i, e := range res.RankingData {
		order[i] = e.ID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"B", "C", "A", "D"}, order)
	assert.Equal(t, 10.0, res.RankingData[0].Value)

	assert.Equal(t, 10.0, res.Statistics.Tertinggi)
	assert.Equal(t, 3.0, res.Statistics.Terendah)
	assert.Equal(t, 23.0, res.Statistics.Total)
	assert.Equal(t, 4, res.Statistics.TotalDesa)
	assert.Equal(t, BinarySplit{Ada: 3, TidakAda: 1}, res.DistributionData)
}

func TestBuildRankingAndStats_AllZero(t *testing.T) {
	rows := NewSliceView([]VillageRecord{
		village("A", "Desa A", "BATU", map[string]any{"jumlah_posyandu": 0}),
		village("B", "Desa B", "BATU", nil),
	})
	res := BuildRankingAndStats(rows, QuantitativeAccessor("jumlah_posyandu"))

	assert.Equal(t, 0.0, res.Statistics.Tertinggi)
	assert.Equal(t, 0.0, res.Statistics.Terendah)
	assert.Equal(t, BinarySplit{TidakAda: 2}, res.DistributionData)
	assert.Equal(t, "A", res.RankingData[0].ID)
}

func TestBuildRankingAndStats_EmptyAndNilAccessor(t *testing.T) {
	empty := BuildRankingAndStats(NewSliceView(nil), QuantitativeAccessor("x"))
	assert.Empty(t, empty.RankingData)
	assert.Equal(t, RankingStats{}, empty.Statistics)

	res := BuildRankingAndStats(rankingRows(), nil)
	assert.Equal(t, 0.0, res.Statistics.Total)
	assert.Equal(t, 4, res.DistributionData.TidakAda)
}

func TestRankingResult_Top(t *testing.T) {
	res := BuildRankingAndStats(rankingRows(), QuantitativeAccessor("jumlah_posyandu"))
	assert.Len(t, res.Top(2), 2)
	assert.Len(t, res.Top(0), 4)
	assert.Len(t, res.Top(10), 4)
}

func TestBuildRankingTable(t *testing.T) {
	res := BuildRankingAndStats(rankingRows(), QuantitativeAccessor("jumlah_posyandu"))
	table := BuildRankingTable("Posyandu", res, 2)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "Desa B", "BATU", "10"}, table.Rows[0])
	assert.Equal(t, "23", table.Summary.Values["value"])
	assert.Equal(t, "3", table.Summary.Values["ada"])
}
