package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibebio/ssrehab/internal/sortstage"
	"github.com/vibebio/ssrehab/internal/streamio"
)

func newSortCmd() *cobra.Command {
	var input, output, by string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Externally sort a Standard Schema table by rsID or (Chr,BP)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseSortKey(by)
			if err != nil {
				return err
			}
			return runSort(input, output, key)
		},
	}

	cmd.Flags().StringVar(&input, "INPUT", "", "Standard Schema TSV, optionally gzipped (required)")
	cmd.Flags().StringVar(&output, "OUTPUT", "", "sorted output path (required)")
	cmd.Flags().StringVar(&by, "by", "rsID", "sort key: rsID or ChrBP")

	_ = cmd.MarkFlagRequired("INPUT")
	_ = cmd.MarkFlagRequired("OUTPUT")

	return cmd
}

func parseSortKey(by string) (sortstage.Key, error) {
	switch strings.ToLower(by) {
	case "rsid":
		return sortstage.ByRsID, nil
	case "chrbp":
		return sortstage.ByChrBP, nil
	default:
		return 0, fmt.Errorf("unrecognized --by %q: want rsID or ChrBP", by)
	}
}

func runSort(input, output string, key sortstage.Key) error {
	r, closeR, err := streamio.Open(input)
	if err != nil {
		return err
	}
	defer closeR.Close()

	w, err := os.Create(output)
	if err != nil {
		return err
	}
	defer w.Close()

	return sortstage.Sort(r, w, key, os.TempDir(), 0)
}
