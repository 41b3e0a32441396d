// Package dbsnp models the two prepared dbSNP side-tables (spec.md §2.5,
// §3, §6): DB1 sorted by (Chr,BP), DB2 sorted by rsID, both gzipped TSV
// with no header. Cursor's Next() shape is grounded on the teacher's
// internal/vcf.Parser/internal/maf.Parser streaming readers.
package dbsnp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one dbSNP side-table row: (Chr, BP, rsID, REF, ALT, FREQ).
type Row struct {
	Chr  string
	BP   int64
	RsID string
	REF  string
	ALT  []string // split on ","
	Freq string   // raw "freq=DB1:f0,f1|DB2:f0,f1" string
}

// Cursor streams Rows from a dbSNP side-table (gzip already unwrapped by
// the caller via internal/streamio).
type Cursor struct {
	sc  *bufio.Scanner
	kind RowKind
}

// RowKind distinguishes DB1's column order from DB2's (spec.md §6).
type RowKind int

const (
	DB1 RowKind = iota // Chr, BP, rsID, REF, ALT, FREQ
	DB2                 // rsID, Chr, BP, REF, ALT, FREQ
)

// NewCursor creates a Cursor over r, whose rows are laid out per kind.
func NewCursor(r io.Reader, kind RowKind) *Cursor {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Cursor{sc: sc, kind: kind}
}

// Next returns the next row, or ok=false at EOF.
func (c *Cursor) Next() (Row, bool, error) {
	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return Row{}, false, fmt.Errorf("scan dbsnp side-table: %w", err)
		}
		return Row{}, false, nil
	}
	line := c.sc.Text()
	cells := strings.Split(line, "\t")
	if len(cells) < 6 {
		return Row{}, false, fmt.Errorf("malformed dbsnp row (want 6 columns, got %d): %q", len(cells), line)
	}

	var row Row
	switch c.kind {
	case DB1:
		row.Chr, row.BP = cells[0], parseBP(cells[1])
		row.RsID, row.REF, row.ALT, row.Freq = cells[2], cells[3], strings.Split(cells[4], ","), cells[5]
	case DB2:
		row.RsID = cells[0]
		row.Chr, row.BP = cells[1], parseBP(cells[2])
		row.REF, row.ALT, row.Freq = cells[3], strings.Split(cells[4], ","), cells[5]
	}
	return row, true, nil
}

func parseBP(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

// Alleles returns REF followed by ALT's tokens, the allele index order
// FREQ's per-allele frequencies follow (spec.md §3, §4.4.4).
func (r Row) Alleles() []string {
	return append([]string{r.REF}, r.ALT...)
}

// FreqForSlug parses Freq (spec.md §3's "freq=DB1:f0,f1|DB2:f0,f1" form)
// and returns the frequency values for the given db slug, in allele order.
func (r Row) FreqForSlug(slug string) ([]string, bool) {
	body := strings.TrimPrefix(r.Freq, "freq=")
	slug = strings.ToLower(slug)
	for _, part := range strings.Split(body, "|") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.ToLower(kv[0]) == slug {
			return strings.Split(kv[1], ","), true
		}
	}
	return nil, false
}
