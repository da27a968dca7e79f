package engine

// ============================================================================
// TEST FIXTURES
// ============================================================================

// village builds a record from loose field values.
func village(id, desa, kec string, fields map[string]any) VillageRecord {
	vals := make(map[string]Value, len(fields))
	for k, v := range fields {
		vals[k] = ParseValue(v)
	}
	return NewVillageRecord(id, desa, kec, vals)
}

// sampleVillages is a small slice of Kota Batu.
func sampleVillages() []VillageRecord {
	return []VillageRecord{
		village("3579011001", "Oro-Oro Ombo", "BATU", map[string]any{
			"jumlah_tk": 3, "jumlah_sd": 4, "kekuatan_sinyal": "Kuat",
		}),
		village("3579011002", "Temas", "BATU", map[string]any{
			"jumlah_tk": 10, "jumlah_sd": 6, "kekuatan_sinyal": "Sangat Kuat",
		}),
		village("3579021001", "Bumiaji", "BUMIAJI", map[string]any{
			"jumlah_tk": 10, "jumlah_sd": 2, "kekuatan_sinyal": "Kuat",
		}),
		village("3579031001", "Junrejo", "JUNREJO", map[string]any{
			"jumlah_tk": 0, "jumlah_sd": nil, "kekuatan_sinyal": "",
		}),
		village("3579021002", "Sumberbrantas", "BUMIAJI", map[string]any{
			"jumlah_tk": "-", "jumlah_sd": 1, "kekuatan_sinyal": "Lemah",
		}),
	}
}

// stubLookup is a minimal IndicatorLookup.
type stubLookup map[string]Indicator

func (s stubLookup) Indicator(key string) (Indicator, bool) {
	ind, ok := s[key]
	return ind, ok
}

func testLookup() stubLookup {
	return stubLookup{
		"jumlah_tk": {
			Key: "jumlah_tk", Label: "Taman Kanak-kanak", DataKey: "jumlah_tk",
			Type: Quantitative, Chart: ChartHistogram, Color: "#42A5F5",
			Accessor: QuantitativeAccessor("jumlah_tk"),
		},
		"jumlah_sd": {
			Key: "jumlah_sd", Label: "Sekolah Dasar", DataKey: "jumlah_sd",
			Type: Quantitative, Chart: ChartHistogram,
			Accessor: QuantitativeAccessor("jumlah_sd"),
		},
		"kekuatan_sinyal": {
			Key: "kekuatan_sinyal", Label: "Kekuatan Sinyal", DataKey: "kekuatan_sinyal",
			Type: Qualitative, Chart: ChartDonut,
			ValueColors: map[string]string{"Sangat Kuat": "#2E7D32", "Kuat": "#66BB6A", "Lemah": "#FFA726"},
			Accessor:    QualitativeAccessor("kekuatan_sinyal"),
		},
	}
}
