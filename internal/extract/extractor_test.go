package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogforge/specline/internal/record"
)

func findCandidate(cands []record.SpecCandidate, key string) (record.SpecCandidate, bool) {
	for _, c := range cands {
		if c.Key == key {
			return c, true
		}
	}
	return record.SpecCandidate{}, false
}

func TestExtract_Material(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("Durable cast iron skillet"), "Material")
	require.True(t, ok)
	assert.Equal(t, "Cast Iron", c.Value)
	assert.Equal(t, record.RankText, c.SourceRank)
}

func TestExtract_MaterialEarliestWins(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("glass carafe with stainless steel base"), "Material")
	require.True(t, ok)
	assert.Equal(t, "Glass", c.Value)
}

func TestExtract_CapacitySingularizes(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(New(nil).Extract("Brews 12 cups at once"), "Capacity")
	require.True(t, ok)
	assert.Equal(t, "12 cup", c.Value)

	c, ok = findCandidate(e.Extract("Holds 1.7 liters"), "Capacity")
	require.True(t, ok)
	assert.Equal(t, "1.7 liter", c.Value)
}

func TestExtract_PowerCompactUnit(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("a 1000 watt motor"), "Power")
	require.True(t, ok)
	assert.Equal(t, "1000W", c.Value)

	c, ok = findCandidate(e.Extract("runs on 120v power"), "Power")
	require.True(t, ok)
	assert.Equal(t, "120V", c.Value)
}

func TestExtract_WarrantyKeepsMatchedText(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("Backed by a 2-year warranty."), "Warranty")
	require.True(t, ok)
	assert.Equal(t, "2-year warranty", c.Value)

	c, ok = findCandidate(e.Extract("includes 90 day guarantee"), "Warranty")
	require.True(t, ok)
	assert.Equal(t, "90 day guarantee", c.Value)
}

func TestExtract_SettingsWithQualifierWords(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("6 precision grind settings"), "Settings")
	require.True(t, ok)
	assert.Equal(t, "6 setting", c.Value)

	c, ok = findCandidate(e.Extract("3 speeds"), "Settings")
	require.True(t, ok)
	assert.Equal(t, "3 speed", c.Value)
}

func TestExtract_Pieces(t *testing.T) {
	e := New(nil)
	c, ok := findCandidate(e.Extract("a 12-piece knife set"), "Pieces")
	require.True(t, ok)
	assert.Equal(t, "12 pieces", c.Value)
}

func TestExtract_FirstMatchWinsPerCategory(t *testing.T) {
	e := New(nil)
	cands := e.Extract("Holds 12 cups or 3 liters")
	capacity := 0
	for _, c := range cands {
		if c.Key == "Capacity" {
			capacity++
			assert.Equal(t, "12 cup", c.Value)
		}
	}
	assert.Equal(t, 1, capacity)
}

func TestExtract_WordBoundaries(t *testing.T) {
	e := New(nil)
	// "glass" inside "fiberglass" and "oz" inside "dozen" must not match.
	_, ok := findCandidate(e.Extract("fiberglass handle"), "Material")
	assert.False(t, ok)
	_, ok = findCandidate(e.Extract("a dozen eggs"), "Capacity")
	assert.False(t, ok)
}

func TestExtract_Features(t *testing.T) {
	e := New(nil)
	cands := e.Extract("BPA-free, dishwasher safe, and nonstick coating")

	for _, label := range []string{"BPA Free", "Dishwasher Safe", "Non-Stick"} {
		c, ok := findCandidate(cands, label)
		require.True(t, ok, label)
		assert.Equal(t, "Yes", c.Value)
	}
	_, ok := findCandidate(cands, "Cordless")
	assert.False(t, ok)
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Nil(t, New(nil).Extract(""))
	assert.Nil(t, New(nil).Extract("   \n  "))
}

func TestExtract_CandidatesFollowRuleOrder(t *testing.T) {
	e := New(nil)
	cands := e.Extract("Salton stainless steel coffee maker, brews 12 cups, 2-year warranty, 6 precision grind settings")

	var keys []string
	for _, c := range cands {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"Material", "Capacity", "Warranty", "Settings"}, keys)
}

func TestValidValue(t *testing.T) {
	assert.True(t, validValue("12 cup"))
	assert.False(t, validValue(""))
	assert.False(t, validValue("  "))
	assert.False(t, validValue(string(make([]byte, 101))))
	// Values dominated by punctuation are rejected.
	assert.False(t, validValue("!!!???***"))
}

func TestSingularize(t *testing.T) {
	assert.Equal(t, "cup", singularize("cups"))
	assert.Equal(t, "liter", singularize("liters"))
	// Double-s and short tokens are left alone.
	assert.Equal(t, "glass", singularize("glass"))
	assert.Equal(t, "ss", singularize("ss"))
}
