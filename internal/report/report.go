// Package report defines the Validator's output contract and its two-row
// CSV persistence (spec.md §3, §4.1).
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vibebio/ssrehab/internal/schema"
)

// Report is the per-field invalid-count summary for one validator pass.
type Report struct {
	Invalid      map[string]int
	TotalEntries int
	// PvalBuckets maps a bucket label ("missing", or "(lo,hi]") to a count
	// of rows falling in it (spec.md §4.1).
	PvalBuckets map[string]int
}

// New returns an empty report with zeroed counters for every Standard
// Schema field.
func New() *Report {
	r := &Report{
		Invalid:     make(map[string]int, len(schema.FieldNames)),
		PvalBuckets: make(map[string]int),
	}
	for _, f := range schema.FieldNames {
		r.Invalid[f] = 0
	}
	return r
}

// EntirelyInvalid reports whether field is invalid in every row (used by
// the orchestrator's planning rules, spec.md §4.5).
func (r *Report) EntirelyInvalid(field string) bool {
	return r.TotalEntries > 0 && r.Invalid[field] == r.TotalEntries
}

// AnyInvalid reports whether field has at least one invalid row.
func (r *Report) AnyInvalid(field string) bool {
	return r.Invalid[field] > 0
}

// WriteCSV persists the report as a two-row CSV: a header row of field
// names plus "total_entries", then one data row of counts (spec.md §3).
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, schema.FieldNames[:]...), "total_entries")
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, 0, len(header))
	for _, f := range schema.FieldNames {
		row = append(row, fmt.Sprintf("%d", r.Invalid[f]))
	}
	row = append(row, fmt.Sprintf("%d", r.TotalEntries))
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes invalid_entries.csv into dir, creating dir if needed
// (spec.md §6, "Report directory").
func (r *Report) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "invalid_entries.csv"))
	if err != nil {
		return fmt.Errorf("create invalid_entries.csv: %w", err)
	}
	defer f.Close()
	return r.WriteCSV(f)
}

// SortedFields returns the Standard Schema field names in a stable order,
// for deterministic printing of per-field invalid counts.
func SortedFields() []string {
	names := append([]string{}, schema.FieldNames[:]...)
	sort.Strings(names)
	return names
}
