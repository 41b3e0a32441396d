package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibebio/ssrehab/internal/report"
	"github.com/vibebio/ssrehab/internal/streamio"
	"github.com/vibebio/ssrehab/internal/validate"
)

func newDiagnoseCmd() *cobra.Command {
	var reportDir string

	cmd := &cobra.Command{
		Use:   "diagnose INPUT",
		Short: "Report per-field invalid counts for a Standard Schema table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(args[0], reportDir)
		},
	}

	cmd.Flags().StringVar(&reportDir, "REPORT-DIR", "", "directory to write invalid_entries.csv into (optional)")

	return cmd
}

func runDiagnose(input, reportDir string) error {
	r, closeR, err := streamio.Open(input)
	if err != nil {
		return err
	}
	defer closeR.Close()

	rep, err := validate.Validate(r, nil, logger)
	recordHistory("diagnose", input, reportDir, nil, err)
	if err != nil {
		return err
	}

	fmt.Printf("total entries: %d\n", rep.TotalEntries)
	for _, f := range report.SortedFields() {
		if n := rep.Invalid[f]; n > 0 {
			fmt.Printf("  %-6s invalid: %d (%.2f%%)\n", f, n, 100*float64(n)/float64(rep.TotalEntries))
		}
	}

	if reportDir != "" {
		if err := rep.WriteDir(reportDir); err != nil {
			return err
		}
		fmt.Println("report written to", reportDir)
	}

	return nil
}
