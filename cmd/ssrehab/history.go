package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vibebio/ssrehab/internal/history"
	"github.com/vibebio/ssrehab/internal/orchestrator"
)

func newHistoryCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent fix runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(n)
		},
	}

	cmd.Flags().IntVar(&n, "n", 20, "number of recent runs to list")

	return cmd
}

func runHistory(n int) error {
	store, err := history.Open(defaultHistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-9s %-6s exit=%-3d entries=%-8d %s -> %s\n",
			r.StartedAt, r.Command, r.Build, r.ExitCode, r.TotalEntries, r.InputPath, r.OutputPath)
	}
	return nil
}

// defaultHistoryPath returns the conventional DuckDB history store
// location, creating no files itself.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssrehab_history.duckdb"
	}
	return filepath.Join(home, ".ssrehab", "history.duckdb")
}

// recordHistory logs one fix or diagnose invocation. A logging failure never masks the
// underlying command result; it's only ever logged.
func recordHistory(command, input, output string, res *orchestrator.Result, runErr error) {
	store, err := history.Open(defaultHistoryPath())
	if err != nil {
		if logger != nil {
			logger.Warnw("history: could not open store", "err", err)
		}
		return
	}
	defer store.Close()

	run := history.Run{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
		Command:    command,
		InputPath:  input,
		OutputPath: output,
	}

	if runErr != nil {
		run.ExitCode = exitCodeFor(runErr)
	}
	if res != nil {
		run.Build = string(res.Build)
		run.PassCount = res.PassCount
		if res.Report1 != nil {
			run.TotalEntries = int64(res.Report1.TotalEntries)
		}
		restored, lost := map[string]int{}, map[string]int{}
		for _, tally := range []map[string]orchestrator.FieldTally{res.Tally1, res.Tally2} {
			for f, ft := range tally {
				restored[f] += ft.Restored
				lost[f] += ft.Lost
			}
		}
		if b, err := json.Marshal(restored); err == nil {
			run.RestoredJSON = string(b)
		}
		if b, err := json.Marshal(lost); err == nil {
			run.LostJSON = string(b)
		}
	}

	if err := store.Record(run); err != nil && logger != nil {
		logger.Warnw("history: could not record run", "err", err)
	}
}
