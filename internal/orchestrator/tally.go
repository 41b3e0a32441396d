package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vibebio/ssrehab/internal/report"
)

// FieldTally is how many rows a field gained (Restored) or lost
// (Lost) validity for between two reports (spec.md §7: "for each pass,
// the orchestrator prints a per-field restored and lost tally").
type FieldTally struct {
	Restored int
	Lost     int
}

// Tally compares the invalid-count of every Standard Schema field between
// before and after, returning only fields that changed.
func Tally(before, after *report.Report) map[string]FieldTally {
	out := make(map[string]FieldTally)
	for f, b := range before.Invalid {
		a := after.Invalid[f]
		switch {
		case a < b:
			out[f] = FieldTally{Restored: b - a}
		case a > b:
			out[f] = FieldTally{Lost: a - b}
		}
	}
	return out
}

// Summary renders a tally as the per-field percentage lines spec.md §7
// describes ("restored and lost tally with percentages").
func Summary(t map[string]FieldTally, total int) string {
	if len(t) == 0 {
		return "no field changes"
	}
	fields := make([]string, 0, len(t))
	for f := range t {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for _, f := range fields {
		ft := t[f]
		if ft.Restored > 0 {
			pct := 0.0
			if total > 0 {
				pct = 100 * float64(ft.Restored) / float64(total)
			}
			fmt.Fprintf(&b, "%s: restored %d (%.1f%%)\n", f, ft.Restored, pct)
		}
		if ft.Lost > 0 {
			pct := 0.0
			if total > 0 {
				pct = 100 * float64(ft.Lost) / float64(total)
			}
			fmt.Fprintf(&b, "%s: lost %d (%.1f%%)\n", f, ft.Lost, pct)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
