package dbsnp

import (
	"fmt"
	"io"
	"strings"
)

// WriteRow writes one row to w in the layout kind specifies, followed by
// a newline.
func WriteRow(w io.Writer, row Row, kind RowKind) error {
	alt := strings.Join(row.ALT, ",")
	bp := fmt.Sprintf("%d", row.BP)
	var err error
	switch kind {
	case DB1:
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row.Chr, bp, row.RsID, row.REF, alt, row.Freq)
	case DB2:
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row.RsID, row.Chr, bp, row.REF, alt, row.Freq)
	}
	return err
}
