package engine

import "fmt"

// ============================================================================
// KPI CARDS — Headline strip of a category
// ============================================================================

// KPICard is one headline number.
type KPICard struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Icon     string        `json:"icon,omitempty"`
	Color    string        `json:"color,omitempty"`
	Type     IndicatorType `json:"type"`
	Value    string        `json:"value"`    // formatted headline
	RawValue float64       `json:"rawValue"` // total, or percent of the dominant label
	Caption  string        `json:"caption"`
	Count    int           `json:"count"` // villages with the facility / with data
}

// BuildKPICards builds one card per indicator.
// Quantitative: total across villages and how many villages have any.
// Qualitative: dominant label and its share of villages with data.
func BuildKPICards(view RecordView, indicators []Indicator) []KPICard {
	cards := make([]KPICard, 0, len(indicators))
	total := viewLen(view)
	for _, ind := range indicators {
		card := KPICard{
			Key:   ind.Key,
			Label: ind.Label,
			Icon:  ind.Icon,
			Color: ind.Color,
			Type:  ind.Type,
		}
		if ind.IsQuantitative() {
			ranking := BuildRankingAndStats(view, ind.Value)
			card.RawValue = ranking.Statistics.Total
			card.Value = FormatNumber(ranking.Statistics.Total)
			card.Count = ranking.DistributionData.Ada
			card.Caption = fmt.Sprintf("tersedia di %s dari %s desa", FormatInt(card.Count), FormatInt(total))
		} else {
			stats := ComputeSummaryStats(indicatorView(view, ind), ind.DataKey)
			card.RawValue = stats.PercentDominant
			card.Value = stats.DominantLabel
			card.Count = stats.DesaDenganData
			if stats.DesaDenganData == 0 {
				card.Caption = "belum ada data"
			} else {
				card.Caption = fmt.Sprintf("%s dari %s desa dengan data",
					FormatPercent(stats.PercentDominant), FormatInt(stats.DesaDenganData))
			}
		}
		cards = append(cards, card)
	}
	return cards
}
