package chromorder

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotality(t *testing.T) {
	universe := []string{"1", "01", "chr1", "22", "23", "X", "x", "chrX", "Y", "M", "MT", "chrM", "GL000192.1", "scaffold_9"}
	for _, a := range universe {
		for _, b := range universe {
			lt := Less(a, b)
			gt := Less(b, a)
			eq := Equal(a, b)
			count := 0
			if lt {
				count++
			}
			if gt {
				count++
			}
			if eq {
				count++
			}
			assert.Equal(t, 1, count, "exactly one of a<b, a=b, a>b must hold for (%q,%q)", a, b)
		}
	}
}

func TestKnownOrder(t *testing.T) {
	assert.True(t, Less("1", "2"))
	assert.True(t, Less("22", "X"))
	assert.True(t, Less("X", "Y"))
	assert.True(t, Less("Y", "M"))
	assert.True(t, Less("M", "GL000192.1"))
	assert.True(t, Equal("1", "01"))
	assert.True(t, Equal("chr1", "1"))
	assert.True(t, Equal("chrM", "MT"))
}

func TestUnknownTokensLexicographic(t *testing.T) {
	assert.True(t, Less("GL000191.1", "GL000192.1"))
	assert.True(t, Less("GL000192.1", "other"))
}

func TestSortTransitiveOnShuffled(t *testing.T) {
	tokens := []string{"1", "2", "3", "10", "22", "X", "Y", "M", "GL1", "GL2"}
	shuffled := append([]string(nil), tokens...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	sort.Slice(shuffled, func(i, j int) bool { return Less(shuffled[i], shuffled[j]) })

	for i := 1; i < len(shuffled); i++ {
		assert.False(t, Less(shuffled[i], shuffled[i-1]), "sorted output must be non-decreasing under the domain order")
	}
}
