package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServingsRange(t *testing.T) {
	min, max := parseServings("2-4")
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 2, *min)
	assert.Equal(t, 5, *max)
}

func TestParseServingsSingleValue(t *testing.T) {
	min, max := parseServings("3")
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 3, *min)
	assert.Equal(t, 4, *max)
}

func TestParseServingsFractional(t *testing.T) {
	min, max := parseServings("2.5-4.5")
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 2, *min)
	assert.Equal(t, 5, *max)
}

func TestParseServingsMalformed(t *testing.T) {
	for _, raw := range []string{"abc", "a-b", "2-", "-4", "-2-4", "0", "-1", "4-2", "", "  ", RefusalSentinel} {
		min, max := parseServings(raw)
		assert.Nil(t, min, "raw=%q", raw)
		assert.Nil(t, max, "raw=%q", raw)
	}
}

func TestParseMinutes(t *testing.T) {
	got := parseMinutes("35")
	require.NotNil(t, got)
	assert.Equal(t, 35, *got)

	got = parseMinutes(" 45 ")
	require.NotNil(t, got)
	assert.Equal(t, 45, *got)

	got = parseMinutes("90.5")
	require.NotNil(t, got)
	assert.Equal(t, 90, *got)

	assert.Nil(t, parseMinutes("thirty"))
	assert.Nil(t, parseMinutes(""))
	assert.Nil(t, parseMinutes(RefusalSentinel))
}

func TestParseFreeText(t *testing.T) {
	got := parseFreeText("  Chef Maria Rossi ")
	require.NotNil(t, got)
	assert.Equal(t, "Chef Maria Rossi", *got)

	assert.Nil(t, parseFreeText(RefusalSentinel))
	assert.Nil(t, parseFreeText("none"))
	assert.Nil(t, parseFreeText("NONE"))
	assert.Nil(t, parseFreeText("   "))
	assert.Nil(t, parseFreeText(""))
}
