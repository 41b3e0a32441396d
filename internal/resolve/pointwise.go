package resolve

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vibebio/ssrehab/internal/dbsnp"
	"github.com/vibebio/ssrehab/internal/liftover"
	"github.com/vibebio/ssrehab/internal/schema"
)

// AlleleComplete fills in the missing allele from a dbSNP REF/ALT pair
// (spec.md §4.4.3). It does nothing unless exactly one of {EA,OA} is
// valid; dbRow must be the matched dbSNP row (by rsID or by Chr/BP).
func AlleleComplete(row *schema.Row, dbRow dbsnp.Row) {
	eaValid := schema.ValidAllele(row.Fields[schema.EA]) && row.Fields[schema.EA] != schema.Sentinel
	oaValid := schema.ValidAllele(row.Fields[schema.OA]) && row.Fields[schema.OA] != schema.Sentinel
	if eaValid == oaValid {
		return // need exactly one present
	}

	missingIdx := schema.OA
	presentVal := row.Fields[schema.EA]
	if oaValid {
		missingIdx = schema.EA
		presentVal = row.Fields[schema.OA]
	}

	switch {
	case strings.EqualFold(presentVal, dbRow.REF):
		if len(dbRow.ALT) > 0 {
			row.Fields[missingIdx] = dbRow.ALT[0]
		}
	case containsFold(dbRow.ALT, presentVal):
		row.Fields[missingIdx] = dbRow.REF
	default:
		// structural mismatch: leave as-is (spec.md §4.4.3)
	}
}

func containsFold(tokens []string, v string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t, v) {
			return true
		}
	}
	return false
}

// EAFFromFreq parses dbRow's FREQ for slug and sets EAF to the frequency
// of the row's EA allele (spec.md §4.4.4). Only runs when EAF is invalid
// and EA is valid; any failure along the way sets EAF to the sentinel.
func EAFFromFreq(row *schema.Row, dbRow dbsnp.Row, slug string) {
	if schema.ValidUnitFloat(row.Fields[schema.EAF]) {
		return
	}
	if !schema.ValidAllele(row.Fields[schema.EA]) || row.Fields[schema.EA] == schema.Sentinel {
		return
	}

	freqs, ok := dbRow.FreqForSlug(slug)
	if !ok {
		row.Fields[schema.EAF] = schema.Sentinel
		return
	}
	alleles := dbRow.Alleles()
	idx := -1
	for i, a := range alleles {
		if strings.EqualFold(a, row.Fields[schema.EA]) {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(freqs) {
		row.Fields[schema.EAF] = schema.Sentinel
		return
	}
	if freqs[idx] == schema.Sentinel || freqs[idx] == "" {
		row.Fields[schema.EAF] = schema.Sentinel
		return
	}
	if _, err := strconv.ParseFloat(freqs[idx], 64); err != nil {
		row.Fields[schema.EAF] = schema.Sentinel
		return
	}
	row.Fields[schema.EAF] = freqs[idx]
}

// twoTailedZ returns z(p) = Φ⁻¹(1 - p/2), the two-tailed normal quantile
// spec.md §4.4.5 specifies, computed with gonum's Normal distribution
// rather than a hand-rolled erfinv (see SPEC_FULL.md §4.6 / DESIGN.md).
func twoTailedZ(p float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.Quantile(1 - p/2)
}

// ResolveSE computes SE = |beta| / z(pval) (spec.md §4.4.5). Activated
// only when SE is invalid and beta, pval are valid.
func ResolveSE(row *schema.Row) {
	if schema.ValidFiniteFloat(row.Fields[schema.SE]) {
		return
	}
	if !schema.ValidFiniteFloat(row.Fields[schema.Beta]) || !schema.ValidUnitFloat(row.Fields[schema.Pval]) {
		return
	}
	beta := mustFloat(row.Fields[schema.Beta])
	p := mustFloat(row.Fields[schema.Pval])
	z := twoTailedZ(p)
	if z == 0 {
		row.Fields[schema.SE] = schema.Sentinel
		return
	}
	se := abs(beta) / z
	if isNaN(se) {
		row.Fields[schema.SE] = schema.Sentinel
		return
	}
	row.Fields[schema.SE] = formatFloat(se)
}

// ResolveBeta computes |beta| = SE * z(pval), unsigned (spec.md §4.4.5,
// §9(b)). Activated only when beta is invalid and SE, pval are valid.
func ResolveBeta(row *schema.Row) {
	if schema.ValidFiniteFloat(row.Fields[schema.Beta]) {
		return
	}
	if !schema.ValidFiniteFloat(row.Fields[schema.SE]) || !schema.ValidUnitFloat(row.Fields[schema.Pval]) {
		return
	}
	se := mustFloat(row.Fields[schema.SE])
	p := mustFloat(row.Fields[schema.Pval])
	z := twoTailedZ(p)
	beta := se * z
	if isNaN(beta) {
		row.Fields[schema.Beta] = schema.Sentinel
		return
	}
	row.Fields[schema.Beta] = formatFloat(beta)
}

// ResolvePval computes pval from z = |beta|/SE via the normal CDF (spec.md
// §4.4.5). Activated only when pval is invalid and beta, SE are valid.
func ResolvePval(row *schema.Row) {
	if schema.ValidUnitFloat(row.Fields[schema.Pval]) {
		return
	}
	if !schema.ValidFiniteFloat(row.Fields[schema.Beta]) || !schema.ValidFiniteFloat(row.Fields[schema.SE]) {
		return
	}
	beta := mustFloat(row.Fields[schema.Beta])
	se := mustFloat(row.Fields[schema.SE])
	if se == 0 {
		row.Fields[schema.Pval] = schema.Sentinel
		return
	}
	z := abs(beta) / se
	n := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * (1 - n.CDF(z))
	if isNaN(p) {
		row.Fields[schema.Pval] = schema.Sentinel
		return
	}
	row.Fields[schema.Pval] = formatFloat(p)
}

// Liftover translates (Chr,BP) via chain and writes the new coordinates,
// stripped of any "chr" prefix (spec.md §4.4.6). On lookup failure both
// fields are set to the sentinel.
func Liftover(row *schema.Row, chain *liftover.Chain) {
	if chain == nil {
		return
	}
	if !schema.ValidChr(row.Fields[schema.Chr]) || !schema.ValidBP(row.Fields[schema.BP]) {
		return
	}
	bp := mustInt(row.Fields[schema.BP])
	destChr, destBP, ok := chain.Translate(row.Fields[schema.Chr], bp)
	if !ok {
		row.Fields[schema.Chr] = schema.Sentinel
		row.Fields[schema.BP] = schema.Sentinel
		return
	}
	row.Fields[schema.Chr] = destChr
	row.Fields[schema.BP] = strconv.FormatInt(destBP, 10)
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func mustInt(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func isNaN(f float64) bool {
	return f != f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
