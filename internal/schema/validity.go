package schema

import (
	"regexp"
	"strconv"
	"strings"
)

var rsIDPattern = regexp.MustCompile(`^rs\d+$`)

var validChrTokens = map[string]bool{
	"X": true, "Y": true, "M": true,
}

func init() {
	for i := 1; i <= 23; i++ {
		validChrTokens[strconv.Itoa(i)] = true
	}
}

// ValidRsID reports whether v matches ^rs\d+$.
func ValidRsID(v string) bool {
	if IsNull(v) {
		return false
	}
	return rsIDPattern.MatchString(v)
}

// NormalizeChr strips a case-insensitive "chr" prefix and upcases the
// remainder, without judging validity.
func NormalizeChr(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 3 && strings.EqualFold(v[:3], "chr") {
		v = v[3:]
	}
	return strings.ToUpper(v)
}

// ValidChr reports whether v (after chr-prefix/case normalization) is one
// of {1..23, X, Y, M}.
func ValidChr(v string) bool {
	if IsNull(v) {
		return false
	}
	return validChrTokens[NormalizeChr(v)]
}

// ValidBP reports whether v parses as a non-negative integer. Scientific
// notation is rejected here deliberately (spec.md §9(c)): only the
// Formatter's numeric-coercion step may accept it.
func ValidBP(v string) bool {
	if IsNull(v) {
		return false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return err == nil && n >= 0
}

var allelePattern = regexp.MustCompile(`^[ATCGatcg]+$`)

// ValidAllele reports whether v is the deletion sentinel "." or a non-empty
// run of A/T/C/G (case-insensitive, MNPs allowed).
func ValidAllele(v string) bool {
	if v == Sentinel {
		return true
	}
	if IsNull(v) {
		return false
	}
	return allelePattern.MatchString(v)
}

// ValidUnitFloat reports whether v parses as a float in [0,1].
func ValidUnitFloat(v string) bool {
	if IsNull(v) {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f >= 0 && f <= 1
}

// ValidFiniteFloat reports whether v parses as a finite float.
func ValidFiniteFloat(v string) bool {
	if IsNull(v) {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false
	}
	return !isNaNOrInf(f)
}

func isNaNOrInf(f float64) bool {
	return f != f || f > maxFinite || f < -maxFinite
}

const maxFinite = 1.7976931348623157e+308

// Valid dispatches to the per-field predicate for field index f.
func Valid(f int, v string) bool {
	switch f {
	case RsID:
		return ValidRsID(v)
	case Chr:
		return ValidChr(v)
	case BP:
		return ValidBP(v)
	case EA, OA:
		return ValidAllele(v)
	case EAF, Pval:
		return ValidUnitFloat(v)
	case SE, Beta:
		return ValidFiniteFloat(v)
	case OR, N, INFO:
		return ValidFiniteFloat(v)
	default:
		return false
	}
}
