package orchestrator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/format"
	"github.com/vibebio/ssrehab/internal/liftover"
	"github.com/vibebio/ssrehab/internal/report"
	"github.com/vibebio/ssrehab/internal/resolve"
	"github.com/vibebio/ssrehab/internal/schema"
	"github.com/vibebio/ssrehab/internal/sortstage"
	"github.com/vibebio/ssrehab/internal/streamio"
	"github.com/vibebio/ssrehab/internal/validate"
)

// Options configures one `fix` invocation (spec.md §6's `fix` CLI flags).
type Options struct {
	InputPath  string
	OutputPath string
	ColumnMap  *config.ColumnMap

	DB1Path   string // opened by a (Chr,BP)-sorted pass; that pass fails if it is empty
	DB2Path   string // opened by an rsID-sorted pass; that pass fails if it is empty
	ChainPath string // optional; "" disables liftover
	FreqSlug  string

	Activated ActivatedResolvers

	Verbose bool
	TmpDir  string

	Log *zap.SugaredLogger // may be nil
}

// Result is the outcome of one Run, including both reports for the caller
// (cmd layer prints them, history.Store logs them).
type Result struct {
	Build        config.Build
	PassCount    int
	Report0      *report.Report
	Report1      *report.Report
	Report2      *report.Report // nil if no second pass ran
	Tally1       map[string]FieldTally
	Tally2       map[string]FieldTally // nil if no second pass ran
	OutputPath   string
	Intermediate []string // paths deleted in non-verbose mode
}

func (o *Options) log() *zap.SugaredLogger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop().Sugar()
}

// Run executes the full fix pipeline (spec.md §4.5): FORMAT -> DIAGNOSE0 ->
// PLAN -> [LIFTOVER?] -> [SORT?] -> FIX1 -> DIAGNOSE1 -> PLAN2 -> [SORT?]
// -> FIX2 -> DIAGNOSE2 -> DONE.
func Run(o Options) (*Result, error) {
	log := o.log()
	res := &Result{Build: o.ColumnMap.Build}

	workDir := filepath.Dir(o.OutputPath)
	if workDir == "" {
		workDir = "."
	}
	base := filepath.Base(o.OutputPath)

	path := func(suffix string) string { return filepath.Join(workDir, base+suffix) }

	// FORMAT + DIAGNOSE0, pipelined through an io.Pipe (spec.md §5 permits
	// concurrent pipelining so long as ordering stays deterministic).
	standardPath := path("_standard.tsv")
	log.Infow("format", "input", o.InputPath, "out", standardPath)
	rep0, err := formatAndValidate(o, standardPath)
	if err != nil {
		return nil, stageErr(ExitFormat, "format", err)
	}
	res.Report0 = rep0
	res.Intermediate = append(res.Intermediate, standardPath)
	log.Infow("diagnose0", "total", rep0.TotalEntries, "invalid", rep0.Invalid)

	haveChain := o.ChainPath != ""
	haveDB1 := o.DB1Path != ""
	plan1 := PlanPass1(rep0, o.ColumnMap.Build, haveChain, haveDB1)
	res.Build = plan1.NewBuild

	currentPath := standardPath

	if plan1.DoLiftover {
		liftedPath := path("_lifted.tsv")
		if err := runLiftoverStage(currentPath, liftedPath, o.ChainPath, log); err != nil {
			return nil, stageErr(ExitPlanOrSort, "liftover", err)
		}
		currentPath = liftedPath
		res.Intermediate = append(res.Intermediate, liftedPath)
	} else if !haveChain && o.ColumnMap.Build != config.BuildHG38 {
		log.Warnw("liftover skipped: no chain file provided", "build", o.ColumnMap.Build)
	} else if plan1.NewBuild != config.BuildHG38 {
		log.Warnw("liftover skipped: no valid (Chr,BP) rows and no DB1; build unchanged", "build", plan1.NewBuild)
	}

	if plan1.DoSort {
		sortedPath := path("_standard_sorted.tsv")
		if err := runSortStage(currentPath, sortedPath, plan1.Key, o.TmpDir); err != nil {
			return nil, stageErr(ExitPlanOrSort, "sort", err)
		}
		currentPath = sortedPath
		res.Intermediate = append(res.Intermediate, sortedPath)
	}

	fix1Plan := ResolversForPass(plan1.Key, plan1.DoSort, rep0, o.Activated, false)
	if o.Activated.Beta && fix1Plan.ResolveBeta {
		log.Warnw("resolve-beta activated: restored sign is unspecified (spec.md §4.4.5/§9(b))")
	}

	fix1Path := trimTSVExt(o.OutputPath) + ".rehabed.tsv"
	if _, err := runFixPass(currentPath, fix1Path, plan1.Key, plan1.DoSort, fix1Plan, o.DB1Path, o.DB2Path, "", o.FreqSlug, log); err != nil {
		return nil, stageErr(ExitFixPass1, "fix pass 1", err)
	}
	res.PassCount = 1
	res.Intermediate = append(res.Intermediate, fix1Path)

	rep1, err := validatePath(fix1Path)
	if err != nil {
		return nil, stageErr(ExitValidateAfter1, "validate after pass 1", err)
	}
	res.Report1 = rep1
	res.Tally1 = Tally(rep0, rep1)
	log.Infow("diagnose1", "total", rep1.TotalEntries, "invalid", rep1.Invalid)

	finalPath := fix1Path

	plan2, run2 := PlanPass2(plan1.Key, plan1.DoSort, rep1)
	fix2Plan := ResolversForPass(plan2.Key, true, rep1, o.Activated, false)
	if run2 && !IsTerminal(fix2Plan) {
		if fix2Plan.ResolveBeta {
			log.Warnw("resolve-beta activated in pass 2: restored sign is unspecified (spec.md §4.4.5/§9(b))")
		}
		sortedPath2 := path("_standard_sorted2.tsv")
		if err := runSortStage(fix1Path, sortedPath2, plan2.Key, o.TmpDir); err != nil {
			return nil, stageErr(ExitPlanPass2, "plan pass 2 sort", err)
		}
		res.Intermediate = append(res.Intermediate, sortedPath2)

		fix2Path := trimTSVExt(o.OutputPath) + ".rehabed-twice.tsv"
		if _, err := runFixPass(sortedPath2, fix2Path, plan2.Key, true, fix2Plan, o.DB1Path, o.DB2Path, "", o.FreqSlug, log); err != nil {
			return nil, stageErr(ExitFixPass2, "fix pass 2", err)
		}
		res.PassCount = 2
		res.Intermediate = append(res.Intermediate, fix2Path)

		rep2, err := validatePath(fix2Path)
		if err != nil {
			return nil, stageErr(ExitValidateAfter2, "validate after pass 2", err)
		}
		res.Report2 = rep2
		res.Tally2 = Tally(rep1, rep2)
		log.Infow("diagnose2", "total", rep2.TotalEntries, "invalid", rep2.Invalid)

		finalPath = fix2Path
	}

	if err := finalize(finalPath, o.OutputPath); err != nil {
		return nil, stageErr(ExitFinalize, "finalize", err)
	}
	res.OutputPath = o.OutputPath

	if !o.Verbose {
		cleanup(res.Intermediate, log)
	}

	return res, nil
}

// formatAndValidate runs the Formatter and Validator concurrently over an
// io.Pipe (SPEC_FULL.md §5): the Formatter's output is teed to the
// standardized TSV file and to the pipe the Validator reads from.
func formatAndValidate(o Options, standardPath string) (*report.Report, error) {
	raw, closeRaw, err := streamio.Open(o.InputPath)
	if err != nil {
		return nil, err
	}
	defer closeRaw.Close()

	f, err := os.Create(standardPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", standardPath, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	pr, pw := io.Pipe()
	mw := io.MultiWriter(bw, pw)

	var rep *report.Report
	g := new(errgroup.Group)
	g.Go(func() error {
		_, ferr := format.Format(raw, mw, o.ColumnMap)
		pw.CloseWithError(ferr)
		return ferr
	})
	g.Go(func() error {
		r, verr := validate.Validate(pr, nil, o.log())
		rep = r
		return verr
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return rep, nil
}

func runLiftoverStage(inPath, outPath, chainPath string, log *zap.SugaredLogger) error {
	chainReader, closeChain, err := streamio.Open(chainPath)
	if err != nil {
		return err
	}
	defer closeChain.Close()
	chain, err := liftover.Load(chainReader)
	if err != nil {
		return fmt.Errorf("load chain file: %w", err)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := applyPointwiseStream(in, out, resolve.Plan{Liftover: true}, &resolve.Context{Chain: chain, Log: log})
	if err != nil {
		return err
	}
	log.Infow("liftover", "rows", n)
	return nil
}

func runSortStage(inPath, outPath string, key sortstage.Key, tmpDir string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return sortstage.Sort(in, out, key, tmpDir, 0)
}

// runFixPass runs one fix pass: a merge-join against DB1 or DB2 if the
// stream is sorted, else a pointwise-only pass (stat back-fill; merge-join
// resolvers need a sorted stream and are never activated when !sorted).
func runFixPass(inPath, outPath string, key sortstage.Key, sorted bool, plan resolve.Plan, db1Path, db2Path, chainPath, freqSlug string, log *zap.SugaredLogger) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	ctx := &resolve.Context{FreqSlug: freqSlug, Log: log}
	if chainPath != "" {
		cr, closeChain, err := streamio.Open(chainPath)
		if err != nil {
			return 0, err
		}
		defer closeChain.Close()
		chain, err := liftover.Load(cr)
		if err != nil {
			return 0, err
		}
		ctx.Chain = chain
	}

	if !sorted {
		return applyPointwiseStream(in, out, plan, ctx)
	}

	switch key {
	case sortstage.ByChrBP:
		dbReader, closeDB, err := streamio.Open(db1Path)
		if err != nil {
			return 0, fmt.Errorf("open dbsnp-1: %w", err)
		}
		defer closeDB.Close()
		return resolve.MergeJoinDB1(in, dbReader, out, plan, ctx)
	case sortstage.ByRsID:
		dbReader, closeDB, err := streamio.Open(db2Path)
		if err != nil {
			return 0, fmt.Errorf("open dbsnp-2: %w", err)
		}
		defer closeDB.Close()
		return resolve.MergeJoinDB2(in, dbReader, out, plan, ctx)
	default:
		return 0, fmt.Errorf("unknown sort key %v", key)
	}
}

// applyPointwiseStream runs only the non-merge-join resolvers (liftover,
// stat back-fill) over every row; used both for the dedicated liftover
// stage and for fix passes that never sorted the input.
func applyPointwiseStream(r io.Reader, w io.Writer, plan resolve.Plan, ctx *resolve.Context) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return 0, fmt.Errorf("empty input file")
	}
	header := sc.Text()
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return 0, err
	}

	n := 0
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		row := schema.ParseRow(line)
		resolve.ApplyPointwise(&row, plan, ctx)
		if _, err := bw.WriteString(row.Format() + "\n"); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

func validatePath(p string) (*report.Report, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return validate.Validate(f, nil, nil)
}

func finalize(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func cleanup(paths []string, log *zap.SugaredLogger) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warnw("cleanup: could not remove intermediate file", "path", p, "err", err)
		}
	}
}

func trimTSVExt(p string) string {
	ext := filepath.Ext(p)
	if ext == ".tsv" || ext == ".gz" {
		return p[:len(p)-len(ext)]
	}
	return p
}
