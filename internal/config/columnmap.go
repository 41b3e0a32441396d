// Package config loads the user column-mapping JSON config (spec.md §6)
// that tells the Formatter how to project an arbitrary raw table onto the
// Standard Schema, and the viper-backed CLI defaults (freq-db slug,
// dbSNP/chain/bcftools/gz-sort paths) grounded on the teacher's own
// cmd/vibe-vep/config.go cobra+viper pattern.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Build is a genome assembly, normalized to one of hg18/hg19/hg38.
type Build string

const (
	BuildHG18 Build = "hg18"
	BuildHG19 Build = "hg19"
	BuildHG38 Build = "hg38"
)

// ParseBuild accepts any of hg18|hg19|hg38|grch36|grch37|grch38|36|37|38,
// case-insensitively (spec.md §6).
func ParseBuild(s string) (Build, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hg18", "grch36", "36", "ncbi36":
		return BuildHG18, nil
	case "hg19", "grch37", "37":
		return BuildHG19, nil
	case "hg38", "grch38", "38":
		return BuildHG38, nil
	default:
		return "", fmt.Errorf("unrecognized build %q", s)
	}
}

// EAFSource is either a single source column index, or a weighted mean
// over several source columns (spec.md §4.2's EAF weighted-average).
type EAFSource struct {
	Index   int             // used when Weights is nil
	Weights map[int]float64 // index -> weight, used instead of Index
}

func (e *EAFSource) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		e.Index = asInt
		return nil
	}
	var asMap map[string]float64
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("EAF config must be an index or an {index: weight} object: %w", err)
	}
	e.Weights = make(map[int]float64, len(asMap))
	for k, w := range asMap {
		var idx int
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
			return fmt.Errorf("EAF weight key %q is not an integer column index", k)
		}
		e.Weights[idx] = w
	}
	return nil
}

// ColumnMap is the user-supplied column-mapping config (spec.md §6).
type ColumnMap struct {
	Build Build
	// Fields maps Standard Schema field name -> source column index, for
	// every field except EAF.
	Fields map[string]int
	EAF    *EAFSource
	// Other holds 0-based indices of passthrough columns.
	Other []int
}

type rawColumnMap struct {
	Build string          `json:"build"`
	RsID  *int            `json:"rsID"`
	Chr   *int            `json:"Chr"`
	BP    *int            `json:"BP"`
	EA    *int             `json:"EA"`
	OA    *int             `json:"OA"`
	EAF   json.RawMessage `json:"EAF"`
	OR    *int            `json:"OR"`
	Beta  *int            `json:"beta"`
	SE    *int            `json:"SE"`
	Pval  *int            `json:"pval"`
	N     *int            `json:"N"`
	INFO  *int            `json:"INFO"`
	Other []int           `json:"other"`
}

// Load parses a column-mapping JSON config from r (spec.md §6).
func Load(r io.Reader) (*ColumnMap, error) {
	var raw rawColumnMap
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode column map config: %w", err)
	}
	if raw.Build == "" {
		return nil, fmt.Errorf("config lacks required \"build\" key")
	}
	build, err := ParseBuild(raw.Build)
	if err != nil {
		return nil, err
	}

	cm := &ColumnMap{
		Build:  build,
		Fields: map[string]int{},
		Other:  raw.Other,
	}
	add := func(name string, idx *int) {
		if idx != nil {
			cm.Fields[name] = *idx
		}
	}
	add("rsID", raw.RsID)
	add("Chr", raw.Chr)
	add("BP", raw.BP)
	add("EA", raw.EA)
	add("OA", raw.OA)
	add("OR", raw.OR)
	add("beta", raw.Beta)
	add("SE", raw.SE)
	add("pval", raw.Pval)
	add("N", raw.N)
	add("INFO", raw.INFO)

	if len(raw.EAF) > 0 {
		var eaf EAFSource
		if err := json.Unmarshal(raw.EAF, &eaf); err != nil {
			return nil, fmt.Errorf("decode EAF config: %w", err)
		}
		cm.EAF = &eaf
	}

	return cm, nil
}
