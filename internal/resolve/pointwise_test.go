package resolve

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vibebio/ssrehab/internal/schema"
)

func newRow(beta, se, pval string) *schema.Row {
	r := &schema.Row{}
	r.Fields[schema.Beta] = beta
	r.Fields[schema.SE] = se
	r.Fields[schema.Pval] = pval
	return r
}

func TestResolveSE(t *testing.T) {
	row := newRow("0.1", ".", "0.05")
	ResolveSE(row)
	se, err := strconv.ParseFloat(row.Fields[schema.SE], 64)
	assert.NoError(t, err)
	assert.InDelta(t, 0.05102, se, 1e-4)
}

func TestResolveBetaUnsigned(t *testing.T) {
	row := newRow(".", "0.05102", "0.05")
	ResolveBeta(row)
	beta, err := strconv.ParseFloat(row.Fields[schema.Beta], 64)
	assert.NoError(t, err)
	assert.InDelta(t, 0.1, beta, 1e-3)
}

func TestResolvePval(t *testing.T) {
	row := newRow("0.1", "0.05102", ".")
	ResolvePval(row)
	p, err := strconv.ParseFloat(row.Fields[schema.Pval], 64)
	assert.NoError(t, err)
	assert.InDelta(t, 0.05, p, 1e-3)
}

func TestResolveSE_DegenerateSE_PEqualsOne(t *testing.T) {
	row := newRow("0.1", ".", "1")
	ResolveSE(row)
	assert.Equal(t, schema.Sentinel, row.Fields[schema.SE])
}

func TestResolvePval_SEZero(t *testing.T) {
	row := newRow("0.1", "0", ".")
	ResolvePval(row)
	assert.Equal(t, schema.Sentinel, row.Fields[schema.Pval])
}

func TestStatisticalRoundTrip(t *testing.T) {
	beta, se := 0.25, 0.07
	z := beta / se
	n := distuv.Normal{Mu: 0, Sigma: 1}
	// p from z via the same normal relation, then recover SE from (beta,p)
	p := 2 * (1 - n.CDF(z))
	row := newRow(strconv.FormatFloat(beta, 'g', -1, 64), ".", strconv.FormatFloat(p, 'g', -1, 64))
	ResolveSE(row)
	got, err := strconv.ParseFloat(row.Fields[schema.SE], 64)
	assert.NoError(t, err)
	assert.InDelta(t, se, got, 1e-3)
}
