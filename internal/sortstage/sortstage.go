// Package sortstage implements the two externalizable Sorters (spec.md
// §4.3): sort-by-rsID (byte-wise) and sort-by-ChrBP (domain chromosome
// order, then numeric BP). Neither sorter materializes the whole file in
// memory (spec.md §5): rows are chunked, each chunk sorted and spilled to
// a temp file, then merged with a k-way heap merge. No library in the
// retrieval pack provides a reusable external sort for delimited text
// rows (the closest analogue, grailbio-bio's cmd/bio-bam-sort/sorter, is
// hard-wired to BAM/PAM binary records) so this is hand-rolled stdlib
// (container/heap, os.CreateTemp) — see DESIGN.md.
package sortstage

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vibebio/ssrehab/internal/chromorder"
	"github.com/vibebio/ssrehab/internal/schema"
)

// Key identifies the sort key a pass was sorted by.
type Key int

const (
	ByRsID Key = iota
	ByChrBP
)

// DefaultChunkRows bounds how many data rows are held in memory at once
// before a chunk is sorted and spilled.
const DefaultChunkRows = 500_000

// Less reports whether row a sorts before row b under key.
func Less(key Key, a, b schema.Row) bool {
	switch key {
	case ByRsID:
		return a.Fields[schema.RsID] < b.Fields[schema.RsID]
	case ByChrBP:
		c := chromorder.Compare(a.Fields[schema.Chr], b.Fields[schema.Chr])
		if c != 0 {
			return c < 0
		}
		return lessNumericBP(a.Fields[schema.BP], b.Fields[schema.BP])
	default:
		return false
	}
}

func lessNumericBP(a, b string) bool {
	na, oka := parseBPSortKey(a)
	nb, okb := parseBPSortKey(b)
	if oka && okb {
		return na < nb
	}
	// unparsable BP sorts after parsable ones, deterministically
	if oka != okb {
		return oka
	}
	return a < b
}

func parseBPSortKey(v string) (int64, bool) {
	var n int64
	var any bool
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
		any = true
	}
	return n, any
}

// Sort reads a Standard Schema TSV from r and writes a sorted Standard
// Schema TSV to w, sorted by key. tmpDir is used for spill files (empty
// string uses the OS default).
func Sort(r io.Reader, w io.Writer, key Key, tmpDir string, chunkRows int) error {
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return fmt.Errorf("empty input file")
	}
	header := sc.Text()

	var chunkFiles []string
	defer func() {
		for _, f := range chunkFiles {
			os.Remove(f)
		}
	}()

	var chunk []string
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		sort.Slice(chunk, func(i, j int) bool {
			return Less(key, schema.ParseRow(chunk[i]), schema.ParseRow(chunk[j]))
		})
		f, err := os.CreateTemp(tmpDir, "ssrehab-sort-chunk-*.tsv")
		if err != nil {
			return fmt.Errorf("create sort chunk: %w", err)
		}
		bw := bufio.NewWriter(f)
		for _, line := range chunk {
			if _, err := bw.WriteString(line); err != nil {
				f.Close()
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				f.Close()
				return err
			}
		}
		if err := bw.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		chunkFiles = append(chunkFiles, f.Name())
		chunk = chunk[:0]
		return nil
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		chunk = append(chunk, line)
		if len(chunk) >= chunkRows {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan standard schema tsv: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return err
	}
	if err := mergeChunks(chunkFiles, key, bw); err != nil {
		return err
	}
	return bw.Flush()
}

type chunkReader struct {
	sc   *bufio.Scanner
	f    *os.File
	cur  schema.Row
	line string
	done bool
}

func openChunk(path string) (*chunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	cr := &chunkReader{sc: sc, f: f}
	cr.advance()
	return cr, nil
}

func (c *chunkReader) advance() {
	if c.sc.Scan() {
		c.line = c.sc.Text()
		c.cur = schema.ParseRow(c.line)
		c.done = false
	} else {
		c.done = true
		c.f.Close()
	}
}

// mergeHeap is a container/heap of chunkReaders ordered by their current
// row under key.
type mergeHeap struct {
	readers []*chunkReader
	key     Key
}

func (h mergeHeap) Len() int { return len(h.readers) }
func (h mergeHeap) Less(i, j int) bool {
	return Less(h.key, h.readers[i].cur, h.readers[j].cur)
}
func (h mergeHeap) Swap(i, j int) { h.readers[i], h.readers[j] = h.readers[j], h.readers[i] }
func (h *mergeHeap) Push(x any)   { h.readers = append(h.readers, x.(*chunkReader)) }
func (h *mergeHeap) Pop() any {
	old := h.readers
	n := len(old)
	item := old[n-1]
	h.readers = old[:n-1]
	return item
}

func mergeChunks(paths []string, key Key, w *bufio.Writer) error {
	h := &mergeHeap{key: key}
	var opened []*chunkReader
	defer func() {
		for _, r := range opened {
			if !r.done {
				r.f.Close()
			}
		}
	}()

	for _, p := range paths {
		cr, err := openChunk(p)
		if err != nil {
			return fmt.Errorf("open sort chunk %s: %w", p, err)
		}
		opened = append(opened, cr)
		if !cr.done {
			h.readers = append(h.readers, cr)
		}
	}
	heap.Init(h)

	for h.Len() > 0 {
		top := h.readers[0]
		if _, err := w.WriteString(top.line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		top.advance()
		if top.done {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}
	return nil
}
