package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuild(t *testing.T) {
	cases := map[string]Build{
		"hg38": BuildHG38, "GRCh38": BuildHG38, "38": BuildHG38,
		"hg19": BuildHG19, "grch37": BuildHG19, "37": BuildHG19,
		"hg18": BuildHG18, "ncbi36": BuildHG18,
	}
	for in, want := range cases {
		got, err := ParseBuild(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBuild("hg99")
	assert.Error(t, err)
}

func TestLoad_RequiresBuild(t *testing.T) {
	_, err := Load(strings.NewReader(`{"rsID": 0}`))
	assert.Error(t, err)
}

func TestLoad_FieldIndicesAndEAFIndex(t *testing.T) {
	cm, err := Load(strings.NewReader(`{
		"build": "hg38",
		"rsID": 0, "Chr": 1, "BP": 2, "EA": 3, "OA": 4,
		"EAF": 5, "pval": 6, "SE": 7, "other": [8, 9]
	}`))
	require.NoError(t, err)
	assert.Equal(t, BuildHG38, cm.Build)
	assert.Equal(t, 0, cm.Fields["rsID"])
	assert.Equal(t, 2, cm.Fields["BP"])
	require.NotNil(t, cm.EAF)
	assert.Equal(t, 5, cm.EAF.Index)
	assert.Nil(t, cm.EAF.Weights)
	assert.Equal(t, []int{8, 9}, cm.Other)
}

func TestLoad_EAFWeightedAverage(t *testing.T) {
	cm, err := Load(strings.NewReader(`{
		"build": "hg19",
		"rsID": 0,
		"EAF": {"1": 0.5, "2": 0.5}
	}`))
	require.NoError(t, err)
	require.NotNil(t, cm.EAF)
	assert.Equal(t, 0.5, cm.EAF.Weights[1])
	assert.Equal(t, 0.5, cm.EAF.Weights[2])
}

func TestLoad_EAFMalformedKey(t *testing.T) {
	_, err := Load(strings.NewReader(`{
		"build": "hg38",
		"EAF": {"not-a-number": 0.5}
	}`))
	assert.Error(t, err)
}
