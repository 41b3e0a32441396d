package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllFieldsGood(t *testing.T) {
	input := "rsID\tChr\tBP\tEA\tOA\tEAF\tOR\tbeta\tSE\tpval\tN\tINFO\n" +
		"rs12\t1\t1000\tA\tG\t0.2\t.\t0.1\t0.01\t0.5\t100\t0.9\n"

	rep, err := Validate(strings.NewReader(input), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalEntries)
	for field, n := range rep.Invalid {
		assert.Equal(t, 0, n, "field %s should be valid", field)
	}
}

func TestMissingRsID(t *testing.T) {
	input := "rsID\tChr\tBP\tEA\tOA\tEAF\tOR\tbeta\tSE\tpval\tN\tINFO\n" +
		".\t1\t1000\tA\tG\t0.2\t.\t0.1\t0.01\t0.5\t100\t0.9\n"

	rep, err := Validate(strings.NewReader(input), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Invalid["rsID"])
	assert.True(t, rep.EntirelyInvalid("rsID"))
}

func TestReportOrthogonality(t *testing.T) {
	input := "rsID\tChr\tBP\tEA\tOA\tEAF\tOR\tbeta\tSE\tpval\tN\tINFO\n" +
		".\t.\t.\t.\t.\t.\t.\t.\t.\t.\t.\t.\n" +
		"rs1\t1\t100\tA\tG\t0.1\t.\t0.1\t0.1\t0.1\t10\t0.9\n"

	rep, err := Validate(strings.NewReader(input), nil, nil)
	require.NoError(t, err)
	for _, n := range rep.Invalid {
		assert.LessOrEqual(t, n, rep.TotalEntries)
	}
	sum := 0
	for _, n := range rep.Invalid {
		sum += n
	}
	assert.GreaterOrEqual(t, sum, rep.TotalEntries) // multiple fields invalid on row 1
}

func TestMissingPvalBucket(t *testing.T) {
	input := "rsID\tChr\tBP\tEA\tOA\tEAF\tOR\tbeta\tSE\tpval\tN\tINFO\n" +
		"rs1\t1\t100\tA\tG\t0.1\t.\t0.1\t0.1\t.\t10\t0.9\n"

	rep, err := Validate(strings.NewReader(input), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.PvalBuckets["missing"])
}
