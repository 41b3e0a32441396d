// Package schema defines the Standard Schema row format shared by every
// stage of the fix pipeline.
package schema

import "strings"

// Sentinel is the on-disk representation of "unknown/not applicable".
const Sentinel = "."

// Field indexes into the fixed Standard Schema column order.
const (
	RsID = iota
	Chr
	BP
	EA
	OA
	EAF
	OR
	Beta
	SE
	Pval
	N
	INFO
	numFields
)

// FieldNames are the Standard Schema column names, in order.
var FieldNames = [numFields]string{
	"rsID", "Chr", "BP", "EA", "OA", "EAF", "OR", "beta", "SE", "pval", "N", "INFO",
}

// Row is one Standard Schema record: the fixed fields plus any passthrough
// columns appended after them, in original order.
type Row struct {
	Fields      [numFields]string
	Passthrough []string
}

// nullTokens are sentinel tokens treated as null on input (spec.md §3).
var nullTokens = map[string]bool{
	"": true, ".": true, "-": true, "na": true, "nan": true,
}

// IsNull reports whether a raw cell value is one of the null sentinels,
// case-insensitively, ignoring surrounding whitespace.
func IsNull(v string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(v))]
}

// ParseRow splits a tab-separated data line into a Row with numFields fixed
// columns followed by any remaining passthrough columns.
func ParseRow(line string) Row {
	cells := strings.Split(line, "\t")
	var r Row
	for i := 0; i < numFields; i++ {
		if i < len(cells) {
			r.Fields[i] = cells[i]
		}
	}
	if len(cells) > numFields {
		r.Passthrough = append(r.Passthrough, cells[numFields:]...)
	}
	return r
}

// Format renders the row back out as a tab-separated line (no trailing
// newline).
func (r Row) Format() string {
	cells := make([]string, 0, numFields+len(r.Passthrough))
	cells = append(cells, r.Fields[:]...)
	cells = append(cells, r.Passthrough...)
	return strings.Join(cells, "\t")
}

// Header returns the Standard Schema header line for the given passthrough
// column names. It equals the header the Formatter writes when the config
// maps every field (the Formatter builds its own header, naming unmapped
// fields "<field>_rehab"); every later stage preserves that header
// byte-for-byte.
func Header(passthroughNames []string) string {
	cols := append(append([]string{}, FieldNames[:]...), passthroughNames...)
	return strings.Join(cols, "\t")
}

// Clone returns a deep copy of the row (resolvers mutate rows in place;
// callers that need the pre-resolver value for comparison should clone
// first).
func (r Row) Clone() Row {
	out := Row{Fields: r.Fields}
	if r.Passthrough != nil {
		out.Passthrough = append([]string(nil), r.Passthrough...)
	}
	return out
}
