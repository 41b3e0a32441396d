// Package streamio provides the gzip-autodetecting line-oriented reader
// shared by every stage that reads a possibly-compressed file: the
// Formatter's raw input, the dbSNP side-tables, the chain file, and the
// sort and diagnose commands' input. The Sorters' own temp files are plain
// text opened with os directly. It replaces two copies of the same logic the teacher kept
// separately in internal/vcf and internal/maf.
package streamio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Open opens path (or stdin if path is "-") and returns a buffered reader
// that transparently decompresses gzip input, detected via magic bytes
// rather than file extension so piped/renamed inputs still work.
//
// The returned closer must be called when done; it closes the gzip reader
// (if any) and the underlying file.
func Open(path string) (*bufio.Reader, io.Closer, error) {
	if path == "-" {
		return bufio.NewReader(os.Stdin), io.NopCloser(nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	magic := make([]byte, 2)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("seek %s: %w", path, err)
	}

	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("create gzip reader for %s: %w", path, err)
		}
		return bufio.NewReader(gz), multiCloser{gz, f}, nil
	}

	return bufio.NewReader(f), f, nil
}

type multiCloser struct {
	inner io.Closer
	file  *os.File
}

func (m multiCloser) Close() error {
	err := m.inner.Close()
	if ferr := m.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// Create creates path and wraps it in a gzip writer if gz is true.
func Create(path string, gz bool) (io.Writer, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	if !gz {
		bw := bufio.NewWriter(f)
		return bw, flushCloser{bw, f}, nil
	}
	gw := gzip.NewWriter(f)
	return gw, multiCloser{gw, f}, nil
}

type flushCloser struct {
	w *bufio.Writer
	f *os.File
}

func (fc flushCloser) Close() error {
	if err := fc.w.Flush(); err != nil {
		fc.f.Close()
		return err
	}
	return fc.f.Close()
}
