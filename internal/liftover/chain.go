// Package liftover translates genomic coordinates between builds using a
// UCSC chain file (spec.md §4.4.6): a read-only lookup, small enough to
// load in full and index in memory (spec.md §5 permits this as the one
// exception to the streaming-only resource model).
package liftover

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vibebio/ssrehab/internal/schema"
)

// Chain holds a parsed chain file, indexed per source chromosome.
type Chain struct {
	byChr map[string]*blockIndex
}

// Load parses a chain file from r. Blocks are accumulated per tName
// (source/"reference" chromosome in UCSC terms) and indexed once parsing
// completes.
func Load(r io.Reader) (*Chain, error) {
	blocksByChr := map[string][]block{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		inHeader                          bool
		tName, qName                      string
		qStrand                           string
		qSize                             int64
		tPos, qPos                        int64
	)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			inHeader = false
			continue
		}
		if strings.HasPrefix(line, "chain") {
			fields := strings.Fields(line)
			if len(fields) < 12 {
				return nil, fmt.Errorf("malformed chain header: %q", line)
			}
			tName = fields[2]
			qName = fields[7]
			qStrand = fields[9]
			var err error
			qSize, err = strconv.ParseInt(fields[8], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse qSize: %w", err)
			}
			tPos, err = strconv.ParseInt(fields[5], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse tStart: %w", err)
			}
			qPos, err = strconv.ParseInt(fields[10], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse qStart: %w", err)
			}
			inHeader = true
			continue
		}
		if !inHeader {
			continue
		}

		fields := strings.Fields(line)
		size, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse block size: %w", err)
		}

		destPos := qPos
		if qStrand == "-" {
			destPos = qSize - qPos - size
		}
		key := schema.NormalizeChr(tName)
		blocksByChr[key] = append(blocksByChr[key], block{
			srcStart: tPos,
			srcEnd:   tPos + size - 1,
			destChr:  qName,
			destPos:  destPos,
		})

		tPos += size
		qPos += size

		if len(fields) >= 3 {
			dt, err1 := strconv.ParseInt(fields[1], 10, 64)
			dq, err2 := strconv.ParseInt(fields[2], 10, 64)
			if err1 == nil && err2 == nil {
				tPos += dt
				qPos += dq
			}
		}
		_ = qName
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}

	byChr := make(map[string]*blockIndex, len(blocksByChr))
	for chr, blocks := range blocksByChr {
		byChr[chr] = buildBlockIndex(blocks)
	}
	return &Chain{byChr: byChr}, nil
}

// Translate maps (chr, bp) to the first matching block's destination
// coordinate. ok is false if no chain block covers the position (spec.md
// §4.4.6/§7: caller must then set Chr and BP to the sentinel).
func (c *Chain) Translate(chr string, bp int64) (destChr string, destBP int64, ok bool) {
	idx, present := c.byChr[schema.NormalizeChr(chr)]
	if !present {
		return "", 0, false
	}
	b, found := idx.FindBlock(bp)
	if !found {
		return "", 0, false
	}
	offset := bp - b.srcStart
	return schema.NormalizeChr(b.destChr), b.destPos + offset, true
}
