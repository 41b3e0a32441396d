// Package format implements the Formatter (spec.md §4.2): projecting an
// arbitrary raw tab-separated file onto the Standard Schema using a
// column-mapping config.
package format

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/schema"
)

// Format reads raw tab-separated rows from r (one header line then data)
// and writes a Standard Schema TSV to w, applying cm's column mapping.
// Returns the number of data rows written.
func Format(r io.Reader, w io.Writer, cm *config.ColumnMap) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if !sc.Scan() {
		return 0, fmt.Errorf("empty input file")
	}
	// raw header line is discarded; the Formatter invents its own header.

	header := buildHeader(cm)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return 0, err
	}

	n := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		row := projectRow(cells, cm)
		if _, err := bw.WriteString(row.Format() + "\n"); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("scan raw input: %w", err)
	}
	return n, bw.Flush()
}

// buildHeader renders the Standard Schema header, substituting
// "<field>_rehab" in place of any field the config doesn't map
// (spec.md §4.2), followed by the "other" passthrough columns.
func buildHeader(cm *config.ColumnMap) string {
	cols := make([]string, 0, len(schema.FieldNames)+len(cm.Other))
	for _, f := range schema.FieldNames {
		present := false
		if f == "EAF" {
			present = cm.EAF != nil
		} else {
			_, present = cm.Fields[f]
		}
		if present {
			cols = append(cols, f)
		} else {
			cols = append(cols, f+"_rehab")
		}
	}
	for range cm.Other {
		cols = append(cols, "other")
	}
	return strings.Join(cols, "\t")
}

func cell(cells []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(cells) {
		return "", false
	}
	return cells[idx], true
}

func projectRow(cells []string, cm *config.ColumnMap) schema.Row {
	var row schema.Row

	for i, name := range schema.FieldNames {
		if name == "EAF" {
			continue
		}
		idx, ok := cm.Fields[name]
		v := ""
		if ok {
			if raw, present := cell(cells, idx); present {
				v = raw
			} else {
				v = schema.Sentinel
			}
		} else {
			v = "" // missing field: empty column under <field>_rehab
		}
		row.Fields[i] = transform(name, v)
	}

	row.Fields[schema.EAF] = computeEAF(cells, cm)

	for _, idx := range cm.Other {
		if v, ok := cell(cells, idx); ok {
			row.Passthrough = append(row.Passthrough, v)
		} else {
			row.Passthrough = append(row.Passthrough, schema.Sentinel)
		}
	}

	return row
}

// transform applies the per-field projection transforms spec.md §4.2
// describes: chr-prefix stripping, BP numeric coercion (sci-notation
// accepted only here), allele upcasing.
func transform(field, v string) string {
	if v == "" {
		return v
	}
	switch field {
	case "Chr":
		return schema.NormalizeChr(v)
	case "BP":
		return coerceBP(v)
	case "EA", "OA":
		return strings.ToUpper(strings.TrimSpace(v))
	default:
		return v
	}
}

// coerceBP accepts scientific-notation decimals on the formatter path only
// (spec.md §9(c)) and renders them as an integer string; anything that
// doesn't parse as a float is passed through unchanged for the Validator
// to reject.
func coerceBP(v string) string {
	trimmed := strings.TrimSpace(v)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return v
	}
	if math.Trunc(f) != f {
		return v // non-integral value: leave as-is, Validator will flag it
	}
	return strconv.FormatInt(int64(f), 10)
}

// computeEAF applies the configured single-column or weighted-average EAF
// projection (spec.md §4.2).
func computeEAF(cells []string, cm *config.ColumnMap) string {
	if cm.EAF == nil {
		return ""
	}
	if cm.EAF.Weights == nil {
		if v, ok := cell(cells, cm.EAF.Index); ok {
			return v
		}
		return schema.Sentinel
	}

	var sumW, sumWX float64
	any := false
	for idx, w := range cm.EAF.Weights {
		v, ok := cell(cells, idx)
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		sumW += w
		sumWX += w * x
		any = true
	}
	if !any || sumW == 0 {
		return schema.Sentinel
	}
	return strconv.FormatFloat(sumWX/sumW, 'g', -1, 64)
}
