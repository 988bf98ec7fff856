package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestMatchAbbreviation(t *testing.T) {
	m, ok := BestMatch("L", []string{"Tomato", "Lettuce"})
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, "Lettuce", m.Text)
	assert.InDelta(t, 0.25, m.Ratio, 1e-9)
	assert.InDelta(t, 0.40, m.Score, 1e-9)
}

func TestBestMatchExactIsCaseInsensitive(t *testing.T) {
	m, ok := BestMatch("LETTUCE", []string{"Beef", "lettuce"})
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 1.0, m.Ratio, 1e-9)
	assert.InDelta(t, 1.0+FirstLetterBonus, m.Score, 1e-9)
}

func TestBestMatchTieKeepsFirst(t *testing.T) {
	m, ok := BestMatch("Beef", []string{"", "Beef", "Beef"})
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
}

func TestBestMatchWordBonus(t *testing.T) {
	m, ok := BestMatch("Beef Patty", []string{"B. P."})
	require.True(t, ok)
	assert.InDelta(t, 0.4, m.Ratio, 1e-9)
	assert.InDelta(t, 2*FirstLetterBonus, m.Score-m.Ratio, 1e-9)
}

func TestBestMatchFoldsAccents(t *testing.T) {
	m, ok := BestMatch("Sauté", []string{"Saute"})
	require.True(t, ok)
	assert.InDelta(t, 1.0, m.Ratio, 1e-9)
}

func TestBestMatchNone(t *testing.T) {
	_, ok := BestMatch("", []string{"Beef"})
	assert.False(t, ok)

	_, ok = BestMatch("Beef", nil)
	assert.False(t, ok)

	_, ok = BestMatch("Beef", []string{"", ""})
	assert.False(t, ok)
}

func TestBestMatchUnrelatedScoresLow(t *testing.T) {
	m, ok := BestMatch("Lettuce", []string{"Onions", "Tomato"})
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.Less(t, m.Score, DefaultMatchThreshold)
}
