package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestRecordAndRecent(t *testing.T) {
	s := openInMemory(t)

	runs := []Run{
		{
			RunID: "run-1", StartedAt: "2026-07-29T10:00:00Z", Command: "fix",
			InputPath: "a.tsv", OutputPath: "a.fixed.tsv", Build: "hg38",
			PassCount: 1, ExitCode: 0, TotalEntries: 100,
			RestoredJSON: `{"rsID":{"Restored":10}}`,
		},
		{
			RunID: "run-2", StartedAt: "2026-07-30T10:00:00Z", Command: "fix",
			InputPath: "b.tsv", OutputPath: "b.fixed.tsv", Build: "hg19",
			PassCount: 2, ExitCode: 14, TotalEntries: 50,
		},
	}
	for _, r := range runs {
		require.NoError(t, s.Record(r))
	}

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// newest first
	assert.Equal(t, "run-2", recent[0].RunID)
	assert.Equal(t, "run-1", recent[1].RunID)
	assert.Equal(t, 14, recent[0].ExitCode)
}

func TestRecentRespectsLimit(t *testing.T) {
	s := openInMemory(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(Run{
			RunID:     fmt.Sprintf("run-%d", i),
			StartedAt: fmt.Sprintf("2026-07-30T10:00:0%dZ", i),
			Command:   "diagnose",
		}))
	}
	recent, err := s.Recent(2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
