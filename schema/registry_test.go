package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spektr-org/podes/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedRegistry(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	cats := reg.Categories()
	require.Len(t, cats, 4)
	keys := make([]string, len(cats))
	for i, c := range cats {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"pendidikan", "kesehatan", "infrastruktur", "lingkungan"}, keys)

	assert.Equal(t, KindFacilities, cats[0].Kind)
	assert.Equal(t, KindFacilities, cats[1].Kind)
	assert.Equal(t, KindMixed, cats[2].Kind)
	assert.Equal(t, KindMixed, cats[3].Kind)
	assert.Len(t, reg.Indicators(), 21)
}

func TestRegistry_IndicatorAccessors(t *testing.T) {
	reg := MustLoad()
	row := engine.RecordFromMap(map[string]any{
		"id_desa": "1", "nama_desa": "A", "nama_kecamatan": "BATU",
		"jumlah_tk": "3", "kekuatan_sinyal": nil,
	})

	tk, ok := reg.Indicator("jumlah_tk")
	require.True(t, ok)
	assert.Equal(t, engine.ChartHistogram, tk.Chart)
	assert.Equal(t, 3.0, tk.Value(row).OrZero())

	sinyal, ok := reg.Indicator("kekuatan_sinyal")
	require.True(t, ok)
	assert.Equal(t, engine.Qualitative, sinyal.Type)
	assert.Equal(t, engine.NoData, sinyal.Value(row).Label())
	assert.Equal(t, "#66BB6A", sinyal.ValueColors["Kuat"])

	sd, _ := reg.Indicator("jumlah_sd")
	assert.Equal(t, 0.0, sd.Value(row).OrZero(), "missing quantitative reads as 0")
}

func TestRegistry_Category(t *testing.T) {
	reg := MustLoad()

	cat, err := reg.Category(" Kesehatan ")
	require.NoError(t, err)
	assert.Equal(t, "kesehatan", cat.Key)
	assert.Len(t, cat.Quantitative(), 6)
	assert.Empty(t, cat.Qualitative())

	all, err := reg.Category(AllCategoryKey)
	require.NoError(t, err)
	assert.Equal(t, KindMixed, all.Kind)
	assert.Len(t, all.Indicators, len(reg.Indicators()))

	_, err = reg.Category("olahraga")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRegistry_ResolveFallback(t *testing.T) {
	reg := MustLoad()

	assert.False(t, reg.Resolve("jumlah_tk").Fallback)

	fb := reg.Resolve("jumlah_pasar_desa")
	assert.True(t, fb.Fallback)
	assert.Equal(t, "JUMLAH PASAR DESA", fb.Label)

	_, err := reg.Lookup("jumlah_pasar_desa")
	assert.ErrorIs(t, err, ErrUnknownIndicator)
	assert.False(t, reg.IsRegistered("jumlah_pasar_desa"))
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "duplicate indicator",
			doc: `
categories:
  - key: a
    title: A
    indicators:
      - {key: x, label: X, type: quantitative}
  - key: b
    title: B
    indicators:
      - {key: x, label: X, type: quantitative}
`,
			want: `duplicate indicator "x"`,
		},
		{
			name: "unknown type",
			doc: `
categories:
  - key: a
    title: A
    indicators:
      - {key: x, label: X, type: ordinal}
`,
			want: `unknown type "ordinal"`,
		},
		{
			name: "unsorted bins",
			doc: `
categories:
  - key: a
    title: A
    indicators:
      - {key: x, label: X, type: quantitative, bins: [0, 3, 2]}
`,
			want: "bins not strictly ascending",
		},
		{
			name: "donut on quantitative",
			doc: `
categories:
  - key: a
    title: A
    indicators:
      - {key: x, label: X, type: quantitative, chart: donut}
`,
			want: `chart "donut" not valid for quantitative`,
		},
		{
			name: "reserved key",
			doc: `
categories:
  - key: semua
    title: Semua
    indicators:
      - {key: x, label: X, type: qualitative}
`,
			want: "reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRegistry)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	reg, err := Parse([]byte(`
categories:
  - key: a
    title: A
    indicators:
      - {key: x, label: X, type: quantitative}
      - {key: y, label: Y, type: qualitative, data_key: raw_y}
`))
	require.NoError(t, err)

	x, _ := reg.Indicator("x")
	assert.Equal(t, "x", x.DataKey)
	assert.Equal(t, engine.ChartHistogram, x.Chart)
	assert.Equal(t, engine.DefaultBins, x.EffectiveBins())

	y, _ := reg.Indicator("y")
	assert.Equal(t, engine.ChartDonut, y.Chart)
	row := engine.RecordFromMap(map[string]any{"id_desa": "1", "raw_y": "Ada"})
	assert.Equal(t, "Ada", y.Value(row).Label())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, defaultRegistry, 0o644))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, reg.Categories(), 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
