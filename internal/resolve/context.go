// Package resolve implements the field-restoration primitives (spec.md
// §4.4): the two merge-join engines against DB1/DB2, allele completion,
// EAF-from-FREQ, the pointwise statistical back-fill, and liftover —
// composed per-pass into an ordered Plan (spec.md §4.4.7).
package resolve

import (
	"go.uber.org/zap"

	"github.com/vibebio/ssrehab/internal/liftover"
	"github.com/vibebio/ssrehab/internal/schema"
)

// Context carries the per-pass configuration a Resolver's Apply needs.
type Context struct {
	FreqSlug string // spec.md §4.4.4, default "dbGaP_PopFreq"
	Chain    *liftover.Chain
	Log      *zap.SugaredLogger
}

// Resolver mutates a single row in place. Implementations never return an
// error for row-level problems (spec.md §7): on failure they write the
// sentinel and move on.
type Resolver interface {
	Apply(row *schema.Row, ctx *Context)
}
