package dbsnpprep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibebio/ssrehab/internal/streamio"
)

func TestAddChrBPSortKey_OrdersByDomainChromosome(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.tsv")
	keyed := filepath.Join(dir, "keyed.tsv")

	require.NoError(t, os.WriteFile(raw, []byte(
		"X\t100\trs1\tA\tG\tfreq=dbGaP_PopFreq:0.1,0.9\n"+
			"2\t500\trs2\tA\tG\tfreq=dbGaP_PopFreq:0.1,0.9\n"+
			"1\t100\trs3\tA\tG\tfreq=dbGaP_PopFreq:0.1,0.9\n",
	), 0644))

	require.NoError(t, addChrBPSortKey(raw, keyed))

	data, err := os.ReadFile(keyed)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	// rank(1) < rank(2) < rank(X) under the domain order, so a plain
	// byte-wise sort of these three lines would already put rs3, rs2, rs1
	// in order -- verify the synthetic key's zero-padded rank makes that
	// true without relying on gz-sort itself.
	sorted := append([]string{}, lines...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	assert.Contains(t, sorted[0], "rs3")
	assert.Contains(t, sorted[1], "rs2")
	assert.Contains(t, sorted[2], "rs1")
}

func TestReorderToDB2_ColumnOrder(t *testing.T) {
	dir := t.TempDir()
	db1 := filepath.Join(dir, "db1.tsv.gz")

	require.NoError(t, gzipLines(db1, "1\t1000\trs12\tA\tG\tfreq=dbGaP_PopFreq:0.8,0.2\n"))

	out := filepath.Join(dir, "db2-unsorted.tsv")
	require.NoError(t, reorderToDB2(db1, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "rs12\t1\t1000\tA\tG\tfreq=dbGaP_PopFreq:0.8,0.2\n", string(data))
}

// gzipLines writes content to path through a gzip writer, via the same
// streamio.Create helper production code uses.
func gzipLines(path, content string) error {
	w, closeW, err := streamio.Create(path, true)
	if err != nil {
		return err
	}
	defer closeW.Close()
	_, err = w.Write([]byte(content))
	return err
}
