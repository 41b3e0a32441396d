package liftover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChain = `chain 1000 chr1 249250621 + 100000 200000 chr1 248956422 + 165000 265000 1
50000

`

func TestTranslate(t *testing.T) {
	c, err := Load(strings.NewReader(sampleChain))
	require.NoError(t, err)

	destChr, destBP, ok := c.Translate("1", 100000)
	require.True(t, ok)
	assert.Equal(t, "1", destChr)
	assert.Equal(t, int64(165000), destBP)

	destChr, destBP, ok = c.Translate("chr1", 100050)
	require.True(t, ok)
	assert.Equal(t, "1", destChr)
	assert.Equal(t, int64(165050), destBP)
}

func TestTranslateMiss(t *testing.T) {
	c, err := Load(strings.NewReader(sampleChain))
	require.NoError(t, err)

	_, _, ok := c.Translate("1", 999999)
	assert.False(t, ok)

	_, _, ok = c.Translate("2", 100000)
	assert.False(t, ok)
}
