package liftover

import "sort"

// blockIndex provides O(log n) point lookups over a chromosome's chain
// blocks using a sorted-slice + suffix-max approach. Adapted from the
// teacher's internal/cache.IntervalTree, which used the same structure to
// find transcripts overlapping a position; chain blocks never overlap
// within one source chromosome, so FindBlock returns at most one match
// instead of every overlap.
type blockIndex struct {
	blocks []block
	maxEnd []int64
}

type block struct {
	srcStart int64
	srcEnd   int64
	destChr  string
	destPos  int64 // destination position corresponding to srcStart
}

// buildBlockIndex creates a blockIndex from a chromosome's chain blocks.
func buildBlockIndex(blocks []block) *blockIndex {
	if len(blocks) == 0 {
		return &blockIndex{}
	}

	sorted := append([]block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].srcStart < sorted[j].srcStart
	})

	maxEnd := make([]int64, len(sorted))
	maxEnd[len(sorted)-1] = sorted[len(sorted)-1].srcEnd
	for i := len(sorted) - 2; i >= 0; i-- {
		maxEnd[i] = sorted[i].srcEnd
		if maxEnd[i+1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i+1]
		}
	}

	return &blockIndex{blocks: sorted, maxEnd: maxEnd}
}

// FindBlock returns the chain block containing pos, if any.
func (idx *blockIndex) FindBlock(pos int64) (block, bool) {
	if len(idx.blocks) == 0 {
		return block{}, false
	}

	hi := sort.Search(len(idx.blocks), func(i int) bool {
		return idx.blocks[i].srcStart > pos
	})

	for i := hi - 1; i >= 0; i-- {
		if idx.maxEnd[i] < pos {
			break
		}
		if idx.blocks[i].srcEnd >= pos {
			return idx.blocks[i], true
		}
	}
	return block{}, false
}
