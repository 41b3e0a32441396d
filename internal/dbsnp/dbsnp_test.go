package dbsnp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorDB1(t *testing.T) {
	data := "1\t1000\trs12\tA\tG\tfreq=dbGaP_PopFreq:0.8,0.2\n" +
		"1\t2000\trs13\tG\tA,T\tfreq=dbGaP_PopFreq:0.5,0.3,0.2\n"

	c := NewCursor(strings.NewReader(data), DB1)

	row, ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", row.Chr)
	assert.Equal(t, int64(1000), row.BP)
	assert.Equal(t, "rs12", row.RsID)
	assert.Equal(t, []string{"G"}, row.ALT)

	row2, ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "T"}, row2.ALT)

	_, ok, err = c.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFreqForSlug(t *testing.T) {
	row := Row{Freq: "freq=dbGaP_PopFreq:0.8,0.2|TOPMED:0.7,0.3"}
	freqs, ok := row.FreqForSlug("dbGaP_PopFreq")
	require.True(t, ok)
	assert.Equal(t, []string{"0.8", "0.2"}, freqs)

	freqs, ok = row.FreqForSlug("TOPMED")
	require.True(t, ok)
	assert.Equal(t, []string{"0.7", "0.3"}, freqs)

	_, ok = row.FreqForSlug("MISSING")
	assert.False(t, ok)
}
