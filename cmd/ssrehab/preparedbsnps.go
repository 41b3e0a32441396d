package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/dbsnpprep"
)

func newPrepareDBSNPsCmd() *cobra.Command {
	var (
		dbsnpPath, output, bcftools, gzSort, buffer string
		noProgress                                  bool
	)

	cmd := &cobra.Command{
		Use:     "prepare-dbsnps",
		Aliases: []string{"prepare_dbSNPs"},
		Short:   "Build the DB1/DB2 dbSNP side-tables from a raw dbSNP VCF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepareDBSNPs(dbsnpPath, output, bcftools, gzSort, buffer, !noProgress)
		},
	}

	cmd.Flags().StringVar(&dbsnpPath, "dbsnp", "", "raw dbSNP VCF, optionally bgzipped (required)")
	cmd.Flags().StringVar(&output, "OUTPUT", "", "output base path; writes OUTPUT.db1.tsv.gz and OUTPUT.db2.tsv.gz (required)")
	cmd.Flags().StringVar(&bcftools, "bcftools", viper.GetString(config.KeyBcftools), "path to the bcftools binary")
	cmd.Flags().StringVar(&gzSort, "gz-sort", viper.GetString(config.KeyGzSort), "path to the gz-sort binary")
	cmd.Flags().StringVar(&buffer, "buffer", "", "gz-sort in-memory buffer size, e.g. 4G")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the bcftools query progress bar")

	_ = cmd.MarkFlagRequired("dbsnp")
	_ = cmd.MarkFlagRequired("OUTPUT")

	return cmd
}

func runPrepareDBSNPs(dbsnpPath, output, bcftools, gzSort, buffer string, showProgress bool) error {
	if _, err := os.Stat(dbsnpPath); err != nil {
		return err
	}
	if bcftools == "" {
		bcftools = "bcftools"
	}
	if gzSort == "" {
		gzSort = "gz-sort"
	}

	err := dbsnpprep.Run(dbsnpprep.Options{
		DBSNPPath:    dbsnpPath,
		OutputBase:   output,
		BcftoolsPath: bcftools,
		GzSortPath:   gzSort,
		BufferSize:   buffer,
		ShowProgress: showProgress,
		TmpDir:       os.TempDir(),
		Log:          logger,
	})
	if err != nil {
		return err
	}

	fmt.Println("wrote", dbsnpprep.DB1Path(output))
	fmt.Println("wrote", dbsnpprep.DB2Path(output))
	return nil
}
