// Package dbsnpprep builds the two dbSNP side-tables (spec.md §2.5, §6)
// from a raw dbSNP VCF: it shells out to `bcftools query` to flatten the
// VCF into a TSV and to an external `gz-sort` binary to externally sort
// it, exactly as spec.md §9 directs ("external processes for sorting and
// VCF query: keep as external commands at the boundary"). A
// `cheggaaa/pb/v3` progress bar wraps the VCF byte stream while bcftools
// runs, grounded on the dbSNP importer in the retrieval pack
// (zymatik-com-importer's internal/importer/dbsnp.go), which wraps the
// same kind of long-running VCF pass in a `pb.Full` bar.
package dbsnpprep

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"go.uber.org/zap"

	"github.com/vibebio/ssrehab/internal/chromorder"
	"github.com/vibebio/ssrehab/internal/dbsnp"
	"github.com/vibebio/ssrehab/internal/streamio"
)

// bcftoolsQueryFormat flattens a dbSNP VCF record to the six columns
// spec.md §3's side-table row needs, with the "freq=DB1:..|DB2:.." FREQ
// format built by bcftools itself from the FREQ INFO field (already
// present in dbSNP's own VCF INFO in that form).
const bcftoolsQueryFormat = "%CHROM\t%POS\t%ID\t%REF\t%ALT\t%INFO/FREQ\n"

// Options configures one `prepare-dbsnps` invocation (spec.md §6).
type Options struct {
	DBSNPPath    string // raw dbSNP VCF (plain or bgzipped)
	OutputBase   string // writes OutputBase+".db1.tsv.gz" and ".db2.tsv.gz"
	BcftoolsPath string
	GzSortPath   string
	BufferSize   string // passed to gz-sort's --buffer, e.g. "4G"
	ShowProgress bool
	TmpDir       string
	Log          *zap.SugaredLogger
}

func (o *Options) log() *zap.SugaredLogger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop().Sugar()
}

// DB1Path and DB2Path return the conventional output paths for base.
func DB1Path(base string) string { return base + ".db1.tsv.gz" }
func DB2Path(base string) string { return base + ".db2.tsv.gz" }

// Run executes the full prepare-dbsnps pipeline: bcftools query -> gz-sort
// by (Chr,BP) -> DB1; then a second gz-sort pass by rsID -> DB2.
func Run(o Options) error {
	log := o.log()

	rawPath := filepath.Join(o.TmpDir, "ssrehab-dbsnp-raw.tsv")
	if err := queryVCF(o, rawPath); err != nil {
		return fmt.Errorf("bcftools query: %w", err)
	}
	defer os.Remove(rawPath)

	log.Infow("prepare-dbsnps: queried VCF", "raw", rawPath)

	if err := buildDB1(o, rawPath); err != nil {
		return fmt.Errorf("build DB1: %w", err)
	}
	log.Infow("prepare-dbsnps: wrote DB1", "path", DB1Path(o.OutputBase))

	if err := buildDB2(o); err != nil {
		return fmt.Errorf("build DB2: %w", err)
	}
	log.Infow("prepare-dbsnps: wrote DB2", "path", DB2Path(o.OutputBase))

	return nil
}

// queryVCF shells out to `bcftools query`, streaming the (possibly
// bgzipped) VCF in on stdin so a progress bar can wrap the byte count,
// and writes the flattened TSV to rawPath.
func queryVCF(o Options, rawPath string) error {
	f, err := os.Open(o.DBSNPPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", o.DBSNPPath, err)
	}
	defer f.Close()

	var stdin io.Reader = f
	var bar *pb.ProgressBar
	if o.ShowProgress {
		fi, err := f.Stat()
		if err != nil {
			return err
		}
		bar = pb.Full.Start64(fi.Size())
		bar.Set(pb.Bytes, true)
		defer bar.Finish()
		stdin = bar.NewProxyReader(f)
	}

	cmd := exec.Command(o.BcftoolsPath, "query", "-f", bcftoolsQueryFormat, "-")
	cmd.Stdin = stdin
	cmd.Stderr = os.Stderr

	out, err := os.Create(rawPath)
	if err != nil {
		return err
	}
	defer out.Close()
	cmd.Stdout = out

	return cmd.Run()
}

// buildDB1 prepends a synthetic sort key (spec.md §3's domain chromosome
// order, zero-padded so a byte-wise external sort produces the same
// result as the in-core domain comparator — the same "augment, sort,
// strip" idiom internal/sortstage uses, generalized for the external
// gz-sort boundary, spec.md §4.3/§9), gz-sorts it, strips the key, and
// writes the gzipped DB1.
func buildDB1(o Options, rawPath string) error {
	keyedPath := filepath.Join(o.TmpDir, "ssrehab-dbsnp-keyed.tsv")
	if err := addChrBPSortKey(rawPath, keyedPath); err != nil {
		return err
	}
	defer os.Remove(keyedPath)

	sortedPath := filepath.Join(o.TmpDir, "ssrehab-dbsnp-sorted.tsv")
	if err := runGzSort(o.GzSortPath, keyedPath, sortedPath, o.BufferSize, 1); err != nil {
		return err
	}
	defer os.Remove(sortedPath)

	return stripSortKeyAndWrite(sortedPath, DB1Path(o.OutputBase))
}

// buildDB2 re-derives DB2 from the already-built DB1 (same rows, DB2
// column order, sorted bytewise by rsID — no synthetic key needed since
// bytewise order is exactly what gz-sort's default column sort gives).
func buildDB2(o Options) error {
	reorderedPath := filepath.Join(o.TmpDir, "ssrehab-dbsnp-db2-unsorted.tsv")
	if err := reorderToDB2(DB1Path(o.OutputBase), reorderedPath); err != nil {
		return err
	}
	defer os.Remove(reorderedPath)

	sortedPath := filepath.Join(o.TmpDir, "ssrehab-dbsnp-db2-sorted.tsv")
	if err := runGzSort(o.GzSortPath, reorderedPath, sortedPath, o.BufferSize, 0); err != nil {
		return err
	}
	defer os.Remove(sortedPath)

	return gzipFile(sortedPath, DB2Path(o.OutputBase))
}

// addChrBPSortKey rewrites rawPath (bcftools query's Chr,BP,rsID,REF,ALT,
// FREQ output) with a leading "rank\tnormalizedChr\tpaddedBP" synthetic
// key so a plain byte-wise external sort on columns 1-3 reproduces the
// domain chromosome order (spec.md §3) followed by numeric BP order.
func addChrBPSortKey(rawPath, keyedPath string) error {
	in, err := os.Open(rawPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(keyedPath)
	if err != nil {
		return err
	}
	defer out.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(out)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cells := strings.SplitN(line, "\t", 6)
		if len(cells) < 6 {
			continue // malformed bcftools row; skip rather than fail the whole prep
		}
		chr, bp := cells[0], cells[1]
		rank, normalized := chromorder.Key(chr)
		bpNum, _ := strconv.ParseInt(bp, 10, 64)
		if _, err := fmt.Fprintf(bw, "%03d\t%s\t%019d\t%s\n", rank, normalized, bpNum, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// stripSortKeyAndWrite drops the three synthetic key columns gz-sort
// ordered by and writes the remaining six columns gzipped.
func stripSortKeyAndWrite(sortedPath, outPath string) error {
	in, err := os.Open(sortedPath)
	if err != nil {
		return err
	}
	defer in.Close()

	w, closeW, err := streamio.Create(outPath, true)
	if err != nil {
		return err
	}
	defer closeW.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)
	for sc.Scan() {
		line := sc.Text()
		cells := strings.SplitN(line, "\t", 4)
		if len(cells) < 4 {
			continue
		}
		if _, err := bw.WriteString(cells[3] + "\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// reorderToDB2 reads DB1's gzipped (Chr,BP,rsID,REF,ALT,FREQ) rows and
// rewrites them unsorted in DB2's (rsID,Chr,BP,REF,ALT,FREQ) column order
// (spec.md §6).
func reorderToDB2(db1Path, outPath string) error {
	r, closeR, err := streamio.Open(db1Path)
	if err != nil {
		return err
	}
	defer closeR.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	cur := dbsnp.NewCursor(r, dbsnp.DB1)
	bw := bufio.NewWriter(out)
	for {
		row, ok, err := cur.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := dbsnp.WriteRow(bw, row, dbsnp.DB2); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// gzipFile copies src to a gzip-compressed dst.
func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	w, closeW, err := streamio.Create(dst, true)
	if err != nil {
		return err
	}
	defer closeW.Close()

	_, err = io.Copy(w, in)
	return err
}

// runGzSort shells out to the external gz-sort binary, sorting inPath on
// the 1-based column startCol through EOL byte-wise, writing outPath.
// startCol=0 sorts on the whole line (used for DB2's bytewise rsID sort,
// since rsID is already column 1).
func runGzSort(gzSortPath, inPath, outPath, bufferSize string, startCol int) error {
	args := []string{"-i", inPath, "-o", outPath}
	if bufferSize != "" {
		args = append(args, "--buffer", bufferSize)
	}
	if startCol > 0 {
		args = append(args, "-k", fmt.Sprintf("%d", startCol))
	}
	cmd := exec.Command(gzSortPath, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
