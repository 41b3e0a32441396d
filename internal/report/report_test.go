package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ZeroesEveryField(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.TotalEntries)
	for _, f := range SortedFields() {
		assert.Equal(t, 0, r.Invalid[f])
	}
}

func TestEntirelyInvalidAndAnyInvalid(t *testing.T) {
	r := New()
	r.TotalEntries = 10
	r.Invalid["rsID"] = 10
	r.Invalid["BP"] = 3

	assert.True(t, r.EntirelyInvalid("rsID"))
	assert.False(t, r.EntirelyInvalid("BP"))
	assert.True(t, r.AnyInvalid("BP"))
	assert.False(t, r.AnyInvalid("OA"))
}

func TestEntirelyInvalid_EmptyReportIsNeverEntirelyInvalid(t *testing.T) {
	r := New()
	assert.False(t, r.EntirelyInvalid("rsID"))
}

func TestWriteCSV(t *testing.T) {
	r := New()
	r.TotalEntries = 5
	r.Invalid["rsID"] = 2

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "rsID")
	assert.Contains(t, lines[0], "total_entries")
}

func TestWriteDir(t *testing.T) {
	r := New()
	r.TotalEntries = 5
	r.Invalid["EAF"] = 1

	dir := filepath.Join(t.TempDir(), "nested", "report")
	require.NoError(t, r.WriteDir(dir))

	data, err := os.ReadFile(filepath.Join(dir, "invalid_entries.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "EAF")
}

func TestSortedFields_IsSorted(t *testing.T) {
	fields := SortedFields()
	for i := 1; i < len(fields); i++ {
		assert.LessOrEqual(t, fields[i-1], fields[i])
	}
}
