package resolve

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/vibebio/ssrehab/internal/chromorder"
	"github.com/vibebio/ssrehab/internal/dbsnp"
	"github.com/vibebio/ssrehab/internal/schema"
)

// Plan is the ordered list of active resolvers for one fix pass (spec.md
// §4.4.7). Non-merge-join resolvers (stat back-fill, liftover) run via
// ApplyPointwise; the merge-join resolvers (ChrBP/rsID/allele/EAF) run as
// part of MergeJoinDB1/MergeJoinDB2 itself, since they need the matched
// dbSNP row.
type Plan struct {
	ResolveRsID   bool // DB1 merge-join: rsID <- DB1.rsID
	ResolveChrBP  bool // DB2 merge-join: (Chr,BP) <- DB2.(Chr,BP)
	ResolveAllele bool
	ResolveEAF    bool
	ResolveSE     bool
	ResolveBeta   bool
	ResolvePval   bool
	Liftover      bool
}

// ApplyPointwise runs the non-merge-join resolvers this plan activates,
// in the fixed order spec.md §4.4.7 implies: liftover first (it may be
// needed before a later sort/merge-join pass), then the statistical
// back-fill.
func ApplyPointwise(row *schema.Row, plan Plan, ctx *Context) {
	if plan.Liftover {
		Liftover(row, ctx.Chain)
	}
	if plan.ResolveSE {
		ResolveSE(row)
	}
	if plan.ResolveBeta {
		ResolveBeta(row)
	}
	if plan.ResolvePval {
		ResolvePval(row)
	}
}

// MergeJoinDB1 streams a (Chr,BP)-sorted Standard Schema TSV against DB1
// (spec.md §4.4.1): two-pointer, domain-ordered comparator, GWAS-row
// granularity. Rows with invalid Chr/BP are emitted unresolved (step 1 of
// spec.md's algorithm). Pointwise resolvers (stat back-fill, liftover) run
// per row after the merge-join resolvers, per plan.
func MergeJoinDB1(gwas io.Reader, db io.Reader, w io.Writer, plan Plan, ctx *Context) (int, error) {
	sc := bufio.NewScanner(gwas)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return 0, fmt.Errorf("empty input file")
	}
	header := sc.Text()

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return 0, err
	}

	cur := dbsnp.NewCursor(db, dbsnp.DB1)
	dbRow, dbOK, err := cur.Next()
	if err != nil {
		return 0, err
	}

	n := 0
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		row := schema.ParseRow(line)
		n++

		if schema.ValidChr(row.Fields[schema.Chr]) && schema.ValidBP(row.Fields[schema.BP]) {
			gChr := row.Fields[schema.Chr]
			gBP, _ := strconv.ParseInt(row.Fields[schema.BP], 10, 64)

			for dbOK && chromBPLess(dbRow.Chr, dbRow.BP, gChr, gBP) {
				dbRow, dbOK, err = cur.Next()
				if err != nil {
					return n, err
				}
			}

			if dbOK && chromBPEqual(dbRow.Chr, dbRow.BP, gChr, gBP) {
				if plan.ResolveRsID {
					row.Fields[schema.RsID] = dbRow.RsID
				}
				if plan.ResolveAllele {
					AlleleComplete(&row, dbRow)
				}
				if plan.ResolveEAF {
					EAFFromFreq(&row, dbRow, ctx.FreqSlug)
				}
			}
		}

		ApplyPointwise(&row, plan, ctx)

		if _, err := bw.WriteString(row.Format() + "\n"); err != nil {
			return n, err
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("scan standard schema tsv: %w", err)
	}

	return n, bw.Flush()
}

// MergeJoinDB2 streams an rsID-sorted Standard Schema TSV against DB2
// (spec.md §4.4.2): key = rsID compared bytewise.
func MergeJoinDB2(gwas io.Reader, db io.Reader, w io.Writer, plan Plan, ctx *Context) (int, error) {
	sc := bufio.NewScanner(gwas)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return 0, fmt.Errorf("empty input file")
	}
	header := sc.Text()

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return 0, err
	}

	cur := dbsnp.NewCursor(db, dbsnp.DB2)
	dbRow, dbOK, err := cur.Next()
	if err != nil {
		return 0, err
	}

	n := 0
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		row := schema.ParseRow(line)
		n++

		if schema.ValidRsID(row.Fields[schema.RsID]) {
			gRsID := row.Fields[schema.RsID]

			for dbOK && dbRow.RsID < gRsID {
				dbRow, dbOK, err = cur.Next()
				if err != nil {
					return n, err
				}
			}

			if dbOK && dbRow.RsID == gRsID {
				if plan.ResolveChrBP {
					row.Fields[schema.Chr] = dbRow.Chr
					row.Fields[schema.BP] = strconv.FormatInt(dbRow.BP, 10)
				}
				if plan.ResolveAllele {
					AlleleComplete(&row, dbRow)
				}
				if plan.ResolveEAF {
					EAFFromFreq(&row, dbRow, ctx.FreqSlug)
				}
			}
		}

		ApplyPointwise(&row, plan, ctx)

		if _, err := bw.WriteString(row.Format() + "\n"); err != nil {
			return n, err
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("scan standard schema tsv: %w", err)
	}

	return n, bw.Flush()
}

func chromBPLess(dbChr string, dbBP int64, gChr string, gBP int64) bool {
	c := chromorder.Compare(dbChr, gChr)
	if c != 0 {
		return c < 0
	}
	return dbBP < gBP
}

func chromBPEqual(dbChr string, dbBP int64, gChr string, gBP int64) bool {
	return chromorder.Equal(dbChr, gChr) && dbBP == gBP
}
