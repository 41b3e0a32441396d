package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/orchestrator"
)

// Exit codes (spec.md §6): 0 success, 1 usage, 2 missing file, 11-19 a
// dedicated per-stage code from internal/orchestrator.
const (
	exitSuccess = 0
	exitUsage   = 1
	exitMissing = 2
)

var (
	verbose bool
	logger  *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	// Subcommands read viper settings as flag defaults while they are
	// constructed below, so viper must be initialised first.
	config.InitViper()

	cmd := &cobra.Command{
		Use:   "ssrehab",
		Short: "Diagnose and repair GWAS summary-statistics tables",
		Long: `ssrehab diagnoses and repairs GWAS summary-statistics tables: restoring
missing rsIDs, coordinates, alleles, and statistical fields from dbSNP
reference tables and inter-field statistical relations, optionally
performing a genome-build liftover first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"keep intermediate files and log at debug level")

	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newDiagnoseCmd())
	cmd.AddCommand(newSortCmd())
	cmd.AddCommand(newPrepareDBSNPsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return exitSuccess
}

func exitCodeFor(err error) int {
	var se *orchestrator.StageError
	if errors.As(err, &se) {
		fmt.Fprintln(os.Stderr, "Error:", se)
		return se.Code
	}
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitMissing
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitUsage
}
