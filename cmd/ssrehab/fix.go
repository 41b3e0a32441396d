package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/orchestrator"
)

func newFixCmd() *cobra.Command {
	var (
		input, output, configPath string
		db1, db2, chainFile       string
		freqDB                    string
		restore, doNotRestore     []string
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Diagnose and restore a GWAS summary-statistics table",
		Long: `fix runs the full pipeline: format the raw input onto the Standard
Schema, diagnose it, optionally liftover and sort, merge-join against the
dbSNP side-tables, back-fill statistical fields, re-diagnose, and run a
second pass if warranted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(input, output, configPath, db1, db2, chainFile, freqDB, restore, doNotRestore)
		},
	}

	cmd.Flags().StringVar(&input, "INPUT", "", "raw input TSV, optionally gzip/zip (required)")
	cmd.Flags().StringVar(&output, "OUTPUT", "", "fixed output path (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "column-mapping JSON config (defaults to <INPUT>.json)")
	cmd.Flags().StringVar(&db1, "dbsnp-1", viper.GetString(config.KeyDBSNP1), "DB1 side-table, (Chr,BP) sorted")
	cmd.Flags().StringVar(&db2, "dbsnp-2", viper.GetString(config.KeyDBSNP2), "DB2 side-table, rsID sorted")
	cmd.Flags().StringVar(&chainFile, "chain-file", viper.GetString(config.KeyChainFile), "liftover chain file (optional)")
	cmd.Flags().StringVar(&freqDB, "freq-db", viper.GetString(config.KeyFreqDB), "dbSNP FREQ sub-population slug")
	cmd.Flags().StringSliceVar(&restore, "restore", nil, "force-enable restoration of these fields")
	cmd.Flags().StringSliceVar(&doNotRestore, "do-not-restore", nil, "force-disable restoration of these fields")

	_ = cmd.MarkFlagRequired("INPUT")
	_ = cmd.MarkFlagRequired("OUTPUT")

	return cmd
}

func runFix(input, output, configPath, db1, db2, chainFile, freqDB string, restore, doNotRestore []string) error {
	if _, err := os.Stat(input); err != nil {
		return err
	}
	if configPath == "" {
		configPath = input + ".json"
	}
	cf, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("open column-map config: %w", err)
	}
	defer cf.Close()
	cm, err := config.Load(cf)
	if err != nil {
		return err
	}

	if override := os.Getenv("build_num"); override != "" {
		build, err := config.ParseBuild(override)
		if err != nil {
			return fmt.Errorf("build_num env override: %w", err)
		}
		cm.Build = build
	}

	if db1 == "" || db2 == "" {
		return fmt.Errorf("--dbsnp-1 and --dbsnp-2 are both required for fix")
	}

	act, err := orchestrator.ParseActivatedResolvers(restore, doNotRestore)
	if err != nil {
		return err
	}

	res, err := orchestrator.Run(orchestrator.Options{
		InputPath:  input,
		OutputPath: output,
		ColumnMap:  cm,
		DB1Path:    db1,
		DB2Path:    db2,
		ChainPath:  chainFile,
		FreqSlug:   freqDB,
		Activated:  act,
		Verbose:    verbose,
		TmpDir:     os.TempDir(),
		Log:        logger,
	})
	if err != nil {
		recordHistory("fix", input, output, nil, err)
		return err
	}

	fmt.Printf("pass 1 (%d rows):\n%s\n", res.Report1.TotalEntries,
		orchestrator.Summary(res.Tally1, res.Report1.TotalEntries))
	if res.Report2 != nil {
		fmt.Printf("pass 2 (%d rows):\n%s\n", res.Report2.TotalEntries,
			orchestrator.Summary(res.Tally2, res.Report2.TotalEntries))
	}
	fmt.Println("output:", res.OutputPath)

	recordHistory("fix", input, output, res, nil)
	return nil
}
