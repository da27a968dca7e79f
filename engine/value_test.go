package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_MissingSpellings(t *testing.T) {
	for _, raw := range []any{nil, "", "   ", "-", " - ", math.NaN()} {
		assert.True(t, ParseValue(raw).IsAbsent(), "%#v should be absent", raw)
	}
}

func TestParseValue_Kinds(t *testing.T) {
	assert.Equal(t, KindNumber, ParseValue(3).Kind())
	assert.Equal(t, KindNumber, ParseValue(json.Number("12")).Kind())
	assert.Equal(t, KindText, ParseValue("Kuat").Kind())
	assert.Equal(t, "Ada", ParseValue(true).Label())
	assert.Equal(t, "Tidak Ada", ParseValue(false).Label())
}

func TestValue_FloatReadsNumericText(t *testing.T) {
	f, ok := Text("4").Float()
	require.True(t, ok)
	assert.Equal(t, 4.0, f)

	_, ok = Text("Kuat").Float()
	assert.False(t, ok)
	_, ok = Absent().Float()
	assert.False(t, ok)
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal([]Value{Number(2), Text("Kuat"), Absent()})
	require.NoError(t, err)
	assert.JSONEq(t, `[2,"Kuat",null]`, string(data))

	var back []Value
	require.NoError(t, json.Unmarshal([]byte(`[2, "Kuat", null, "-"]`), &back))
	require.Len(t, back, 4)
	assert.Equal(t, 2.0, back[0].OrZero())
	assert.Equal(t, "Kuat", back[1].Label())
	assert.True(t, back[2].IsAbsent())
	assert.True(t, back[3].IsAbsent())
}

func TestVillageRecord_JSONRoundTrip(t *testing.T) {
	raw := `{"id_desa":3579011001,"nama_desa":"Oro-Oro Ombo","nama_kecamatan":"BATU","jumlah_tk":3,"kekuatan_sinyal":"Kuat","pencemaran_air":null}`

	var r VillageRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, "3579011001", r.ID)
	assert.Equal(t, "Oro-Oro Ombo", r.Desa)
	assert.Equal(t, "BATU", r.Kecamatan)
	assert.Equal(t, 3.0, r.Field("jumlah_tk").OrZero())
	assert.True(t, r.Field("pencemaran_air").IsAbsent())
	assert.True(t, r.Field("tidak_ada_kolom").IsAbsent())
	assert.Equal(t, []string{"jumlah_tk", "kekuatan_sinyal", "pencemaran_air"}, r.Keys())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id_desa":"3579011001","nama_desa":"Oro-Oro Ombo","nama_kecamatan":"BATU","jumlah_tk":3,"kekuatan_sinyal":"Kuat","pencemaran_air":null}`, string(out))
}

func TestIndicatorValue_Defaults(t *testing.T) {
	r := village("1", "A", "BATU", map[string]any{"jumlah_tk": nil, "kekuatan_sinyal": "-"})
	lookup := testLookup()

	assert.Equal(t, 0.0, lookup["jumlah_tk"].Value(r).OrZero())
	assert.True(t, lookup["jumlah_tk"].Value(r).IsNumber())
	assert.Equal(t, "-", lookup["kekuatan_sinyal"].Value(r).Label())
}

func TestFallbackIndicator(t *testing.T) {
	ind := ResolveIndicator(testLookup(), "jumlah_pasar_desa")
	assert.True(t, ind.Fallback)
	assert.Equal(t, "JUMLAH PASAR DESA", ind.Label)
	assert.Equal(t, "jumlah_pasar_desa", ind.DataKey)

	known := ResolveIndicator(testLookup(), "jumlah_tk")
	assert.False(t, known.Fallback)
	assert.Equal(t, "Taman Kanak-kanak", known.Label)
}

func TestInferType_TextMakesFallbackQualitative(t *testing.T) {
	view := NewSliceView([]VillageRecord{
		village("1", "A", "BATU", map[string]any{"status_bumdes": "Aktif"}),
		village("2", "B", "BATU", map[string]any{"status_bumdes": nil}),
	})
	ind := inferType(FallbackIndicator("status_bumdes"), view)
	assert.Equal(t, Qualitative, ind.Type)

	numeric := inferType(FallbackIndicator("jumlah_tk"), NewSliceView(sampleVillages()))
	assert.Equal(t, Quantitative, numeric.Type)
}

func TestApplyFilters_Kecamatan(t *testing.T) {
	view := NewSliceView(sampleVillages())

	batu := ApplyFilters(view, KecamatanFilter("batu"))
	assert.Equal(t, 2, batu.Len())
	assert.Equal(t, "Temas", batu.Row(1).Desa)

	both := ApplyFilters(view, KecamatanFilter("BATU", "JUNREJO"))
	assert.Equal(t, 3, both.Len())

	assert.Same(t, view, ApplyFilters(view, Filters{}))
	assert.Equal(t, 0, ApplyFilters(view, KecamatanFilter("MALANG")).Len())
}
