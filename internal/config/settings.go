package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings keys used by the `ssrehab config` subcommand and read as flag
// defaults by fix/prepare-dbsnps, grounded on the teacher's
// cmd/vibe-vep/config.go viper usage.
const (
	KeyFreqDB     = "freq-db"
	KeyDBSNP1     = "dbsnp1"
	KeyDBSNP2     = "dbsnp2"
	KeyChainFile  = "chain-file"
	KeyBcftools   = "bcftools"
	KeyGzSort     = "gz-sort"
	DefaultFreqDB = "dbGaP_PopFreq"
)

// InitViper wires viper's config file discovery the way the teacher does:
// a single YAML file at ~/.ssrehab.yaml, overridable by SSREHAB_CONFIG.
func InitViper() {
	viper.SetDefault(KeyFreqDB, DefaultFreqDB)

	if cfgFile := os.Getenv("SSREHAB_CONFIG"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".ssrehab")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ssrehab")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig() // absence of a config file is not an error
}

// DefaultConfigPath returns the conventional config file path, creating no
// files itself.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssrehab.yaml"
	}
	return filepath.Join(home, ".ssrehab.yaml")
}
