// Package validate implements the Validator (spec.md §4.1): per-row,
// per-field validity checks producing a Report and a p-value-bucket
// stratification.
package validate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vibebio/ssrehab/internal/report"
	"github.com/vibebio/ssrehab/internal/schema"
)

// Ticks are the p-value cutoffs used for bucket stratification. Bucket 0
// is reserved for "pval missing/invalid"; bucket i (i>=1) is the half-open
// interval (ticks[i-2], ticks[i-1]].
var DefaultTicks = []float64{1e-8, 1e-5, 1e-3, 0.01, 0.05, 1}

// Validate reads a Standard Schema TSV from r (header + data rows) and
// returns a Report. log may be nil.
func Validate(r io.Reader, ticks []float64, log *zap.SugaredLogger) (*report.Report, error) {
	if ticks == nil {
		ticks = DefaultTicks
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	rep := report.New()

	if !sc.Scan() {
		return rep, nil // empty file after header-less read: nothing to validate
	}
	// first line is the header; skip it.

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		row := schema.ParseRow(line)
		rep.TotalEntries++

		for f := 0; f < len(schema.FieldNames); f++ {
			v := row.Fields[f]
			if f == schema.OR || f == schema.N || f == schema.INFO {
				// spec.md §3: OR/N/INFO are "finite if present (not
				// restored by the core)" — still counted for reporting,
				// but absence is not itself invalid.
				if schema.IsNull(v) {
					continue
				}
			}
			if !schema.Valid(f, v) {
				rep.Invalid[schema.FieldNames[f]]++
			}
		}

		bucket := pvalBucket(row.Fields[schema.Pval], ticks)
		rep.PvalBuckets[bucket]++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan standard schema tsv: %w", err)
	}

	if log != nil {
		for _, f := range schema.FieldNames {
			if rep.Invalid[f] > 0 {
				log.Infow("field validity", "field", f, "invalid", rep.Invalid[f], "total", rep.TotalEntries)
			}
		}
	}

	return rep, nil
}

func pvalBucket(v string, ticks []float64) string {
	if !schema.ValidUnitFloat(v) {
		return "missing"
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return "missing"
	}
	lo := 0.0
	for _, hi := range ticks {
		if p > lo && p <= hi {
			return fmt.Sprintf("(%g,%g]", lo, hi)
		}
		lo = hi
	}
	return fmt.Sprintf("(%g,inf]", lo)
}
