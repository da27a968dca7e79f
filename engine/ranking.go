package engine

import "sort"

// ============================================================================
// RANKING — Village ranking panel for one numeric indicator
// ============================================================================

// RankEntry is one village in the ranking.
type RankEntry struct {
	Rank      int     `json:"rank"`
	ID        string  `json:"id_desa"`
	Desa      string  `json:"nama_desa"`
	Kecamatan string  `json:"nama_kecamatan"`
	Value     float64 `json:"value"`
}

// BinarySplit counts villages with and without the facility.
type BinarySplit struct {
	Ada      int `json:"ada"`
	TidakAda int `json:"tidakAda"`
}

// RankingStats are the headline numbers of the panel.
type RankingStats struct {
	Tertinggi float64 `json:"tertinggi"`
	Terendah  float64 `json:"terendah"`
	Total     float64 `json:"total"`
	TotalDesa int     `json:"totalDesa"`
}

// RankingResult is the full panel.
type RankingResult struct {
	RankingData      []RankEntry  `json:"rankingData"`
	DistributionData BinarySplit  `json:"distributionData"`
	Statistics       RankingStats `json:"statistics"`
}

// BuildRankingAndStats ranks every row by accessor, value descending.
// Ties keep input order. Values > 0 count as "Ada". Tertinggi is the
// maximum over all rows; Terendah is the minimum over rows with a value
// > 0 and 0 when none has one. A nil accessor reads every row as 0.
func BuildRankingAndStats(view RecordView, accessor Accessor) RankingResult {
	n := viewLen(view)
	res := RankingResult{RankingData: make([]RankEntry, 0, n)}
	res.Statistics.TotalDesa = n

	hasPositive := false
	for i := 0; i < n; i++ {
		row := view.Row(i)
		var value float64
		if accessor != nil {
			value = accessor(row).OrZero()
		}

		res.RankingData = append(res.RankingData, RankEntry{
			ID:        row.ID,
			Desa:      row.Desa,
			Kecamatan: row.Kecamatan,
			Value:     value,
		})

		res.Statistics.Total += value
		if i == 0 || value > res.Statistics.Tertinggi {
			res.Statistics.Tertinggi = value
		}
		if value > 0 {
			res.DistributionData.Ada++
			if !hasPositive || value < res.Statistics.Terendah {
				res.Statistics.Terendah = value
			}
			hasPositive = true
		} else {
			res.DistributionData.TidakAda++
		}
	}

	sort.SliceStable(res.RankingData, func(i, j int) bool {
		return res.RankingData[i].Value > res.RankingData[j].Value
	})
	for i := range res.RankingData {
		res.RankingData[i].Rank = i + 1
	}
	return res
}

// Top returns the first n entries of the ranking (all when n <= 0).
func (r RankingResult) Top(n int) []RankEntry {
	if n <= 0 || n >= len(r.RankingData) {
		return r.RankingData
	}
	return r.RankingData[:n]
}
