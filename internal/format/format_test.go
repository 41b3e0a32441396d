package format

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibebio/ssrehab/internal/config"
)

func TestFormatBasicProjection(t *testing.T) {
	cfg := strings.NewReader(`{
		"build": "hg19",
		"rsID": 0, "Chr": 1, "BP": 2, "EA": 3, "OA": 4,
		"EAF": 5, "beta": 6, "SE": 7, "pval": 8
	}`)
	cm, err := config.Load(cfg)
	require.NoError(t, err)

	raw := "SNP\tchrom\tpos\ta1\ta2\tfreq\tb\tse\tp\n" +
		"rs12\tchr1\t1000\ta\tg\t0.2\t0.1\t0.01\t0.5\n"

	var out bytes.Buffer
	n, err := Format(strings.NewReader(raw), &out, cm)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "OR_rehab")
	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "rs12", fields[0])
	assert.Equal(t, "1", fields[1]) // chr prefix stripped
	assert.Equal(t, "1000", fields[2])
	assert.Equal(t, "A", fields[3]) // upcased
	assert.Equal(t, "G", fields[4])
}

func TestFormatWeightedEAF(t *testing.T) {
	cfg := strings.NewReader(`{
		"build": "hg38",
		"rsID": 0, "Chr": 1, "BP": 2, "EA": 3, "OA": 4,
		"EAF": {"5": 100, "6": 50},
		"beta": 7, "SE": 8, "pval": 9
	}`)
	cm, err := config.Load(cfg)
	require.NoError(t, err)

	raw := "SNP\tchrom\tpos\ta1\ta2\tf1\tf2\tb\tse\tp\n" +
		"rs1\t1\t100\ta\tg\t0.3\t0.1\t0.1\t0.1\t0.1\n"

	var out bytes.Buffer
	_, err = Format(strings.NewReader(raw), &out, cm)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	fields := strings.Split(lines[1], "\t")
	// (100*0.3 + 50*0.1) / 150 = 35/150 = 0.2333...
	f, err := strconv.ParseFloat(fields[5], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.23333, f, 1e-4)
}
