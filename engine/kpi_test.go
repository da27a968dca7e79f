package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKPICards(t *testing.T) {
	lookup := testLookup()
	cards := BuildKPICards(NewSliceView(sampleVillages()), []Indicator{lookup["jumlah_tk"], lookup["kekuatan_sinyal"]})
	require.Len(t, cards, 2)

	tk := cards[0]
	assert.Equal(t, Quantitative, tk.Type)
	assert.Equal(t, 23.0, tk.RawValue)
	assert.Equal(t, "23", tk.Value)
	assert.Equal(t, 3, tk.Count)
	assert.Contains(t, tk.Caption, "3 dari 5 desa")

	sinyal := cards[1]
	assert.Equal(t, "Kuat", sinyal.Value)
	assert.Equal(t, 50.0, sinyal.RawValue)
	assert.Equal(t, 4, sinyal.Count)
}

func TestBuildKPICards_NoData(t *testing.T) {
	lookup := testLookup()
	cards := BuildKPICards(NewSliceView(nil), []Indicator{lookup["kekuatan_sinyal"]})
	require.Len(t, cards, 1)
	assert.Equal(t, NoData, cards[0].Value)
	assert.Equal(t, "belum ada data", cards[0].Caption)
}

func TestFormatInt_IndonesianGrouping(t *testing.T) {
	assert.Equal(t, "12", FormatInt(12))
	assert.Equal(t, "1.234", FormatInt(1234))
}
