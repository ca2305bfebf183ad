package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/cost"
	"github.com/eth-easl/gumeter/pkg/telemetry"
)

func TestConfigParser(t *testing.T) {
	var pathToConfigFile = ""
	wd, _ := os.Getwd()

	if strings.HasSuffix(wd, "pkg/config") {
		pathToConfigFile = "../../"
	}
	pathToConfigFile += "cmd/config.json"

	cfg, err := LoadConfiguration(pathToConfigFile)
	require.NoError(t, err)

	assert.Equal(t, "benchmark_results", cfg.ResultsDir)
	assert.Equal(t, "plots", cfg.OutputDir)
	assert.Equal(t, common.StrategyArea, cfg.Strategy)
	assert.Equal(t, 0.1, cfg.SamplingStep)
	assert.Equal(t, 5000000, cfg.MaxSamples)
	assert.Equal(t, 1.0, cfg.BurstPenalty)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, []string{"montecarlo_stock", "montecarlo_pi", "terasort", "mandelbrot"}, cfg.Benchmarks)
	assert.Equal(t, []string{"aws_lambda", "gcp_cloudrun", "code_engine"}, cfg.Backends)
	assert.False(t, cfg.UseBucket)
	assert.Equal(t, "gumeter-results", cfg.Bucket.Bucket)
	assert.Equal(t, "benchmark_results", cfg.Bucket.Prefix)

	require.Contains(t, cfg.Pricing, common.BackendAWSBatch)
	assert.Equal(t, 0.0000164, cfg.Pricing[common.BackendAWSBatch].ComputeSecond)
	assert.NoError(t, cfg.Validate())

	pricing := cfg.PricingTable()
	assert.Contains(t, pricing, common.BackendAWSLambda)
	assert.Contains(t, pricing, common.BackendAWSBatch)
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, common.DefaultResultsDir, cfg.ResultsDir)
	assert.Equal(t, common.StrategyArea, cfg.Strategy)
	assert.Equal(t, common.DefaultSamplingStep, cfg.SamplingStep)
	assert.Equal(t, common.DefaultMaxSamples, cfg.MaxSamples)
	assert.Empty(t, cfg.Backends)
	assert.NoError(t, cfg.Validate())

	source, err := cfg.Source()
	require.NoError(t, err)
	assert.IsType(t, &telemetry.DirSource{}, source)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GUMETER_STRATEGY", common.StrategyBurstPenalty)
	t.Setenv("GUMETER_BURSTPENALTY", "0.25")
	t.Setenv("GUMETER_MAXSAMPLES", "1000")

	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, common.StrategyBurstPenalty, cfg.Strategy)
	assert.Equal(t, 0.25, cfg.BurstPenalty)
	assert.Equal(t, 1000, cfg.MaxSamples)
}

func TestMissingConfiguration(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() MeterConfiguration {
		cfg, err := LoadConfiguration("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		testName string
		mutate   func(cfg *MeterConfiguration)
	}{
		{"unknown_strategy", func(cfg *MeterConfiguration) { cfg.Strategy = "ratio" }},
		{"zero_step", func(cfg *MeterConfiguration) { cfg.SamplingStep = 0 }},
		{"negative_penalty", func(cfg *MeterConfiguration) { cfg.BurstPenalty = -1 }},
		{"too_few_samples", func(cfg *MeterConfiguration) { cfg.MaxSamples = 1 }},
		{"mixed_billing", func(cfg *MeterConfiguration) {
			cfg.Pricing = cost.PricingTable{"aws_batch": {ComputeSecond: 0.0000164, CPUSecond: 0.00003}}
		}},
		{"negative_rate", func(cfg *MeterConfiguration) {
			cfg.Pricing = cost.PricingTable{"aws_batch": {Invocation: -1}}
		}},
		{"no_concurrency", func(cfg *MeterConfiguration) { cfg.Concurrency = 0 }},
		{"unknown_backend", func(cfg *MeterConfiguration) { cfg.Backends = []string{"azure_functions"} }},
		{"bucket_without_name", func(cfg *MeterConfiguration) {
			cfg.UseBucket = true
			cfg.Bucket.Bucket = ""
		}},
	}

	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			cfg := valid()
			test.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
