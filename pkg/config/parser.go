package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/cost"
	"github.com/eth-easl/gumeter/pkg/telemetry"
)

const EnvPrefix = "GUMETER"

type MeterConfiguration struct {
	ResultsDir string `json:"ResultsDir"`
	OutputDir  string `json:"OutputDir"`

	Strategy     string  `json:"Strategy"`
	SamplingStep float64 `json:"SamplingStep"`
	BurstPenalty float64 `json:"BurstPenalty"`
	// MaxSamples bounds the sampled curves of one run. Longer runs fail alone.
	MaxSamples int `json:"MaxSamples"`

	// Concurrency bounds the number of runs analyzed in parallel.
	Concurrency int `json:"Concurrency"`

	// Optional filters, empty means everything found.
	Benchmarks []string `json:"Benchmarks"`
	Backends   []string `json:"Backends"`

	// Pricing replaces the default rates of the listed backends.
	Pricing cost.PricingTable `json:"Pricing"`

	UseBucket bool                   `json:"UseBucket"`
	Bucket    telemetry.BucketConfig `json:"Bucket"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ResultsDir", common.DefaultResultsDir)
	v.SetDefault("OutputDir", common.DefaultPlotsDir)
	v.SetDefault("Strategy", common.StrategyArea)
	v.SetDefault("SamplingStep", common.DefaultSamplingStep)
	v.SetDefault("BurstPenalty", common.DefaultBurstPenalty)
	v.SetDefault("MaxSamples", common.DefaultMaxSamples)
	v.SetDefault("Concurrency", 4)
	v.SetDefault("Benchmarks", []string{})
	v.SetDefault("Backends", []string{})
	v.SetDefault("UseBucket", false)
	v.SetDefault("Bucket.Endpoint", "localhost:9000")
	v.SetDefault("Bucket.Bucket", "gumeter-results")
	v.SetDefault("Bucket.Prefix", "")
	v.SetDefault("Bucket.AccessKey", "")
	v.SetDefault("Bucket.SecretKey", "")
	v.SetDefault("Bucket.Secure", false)
	v.SetDefault("Bucket.Region", "")
}

// LoadConfiguration reads the JSON configuration at path on top of the
// defaults; GUMETER_<KEY> environment variables override both. An empty path
// yields the defaults.
func LoadConfiguration(path string) (MeterConfiguration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return MeterConfiguration{}, errors.Wrapf(err, "reading configuration %s", path)
		}
	}

	var cfg MeterConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return MeterConfiguration{}, errors.Wrap(err, "decoding configuration")
	}

	return cfg, nil
}

func (c *MeterConfiguration) Validate() error {
	if err := common.CheckStrategy(c.Strategy); err != nil {
		return err
	}
	if c.SamplingStep <= 0 {
		return errors.Errorf("sampling step must be positive, got %v", c.SamplingStep)
	}
	if c.BurstPenalty < 0 {
		return errors.Errorf("burst penalty must not be negative, got %v", c.BurstPenalty)
	}
	if c.MaxSamples < 2 {
		return errors.Errorf("max samples must be at least 2, got %d", c.MaxSamples)
	}
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	for _, backend := range c.Backends {
		if err := common.CheckBackend(backend); err != nil {
			return err
		}
	}
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if c.UseBucket && (c.Bucket.Endpoint == "" || c.Bucket.Bucket == "") {
		return errors.New("bucket results need both an endpoint and a bucket name")
	}
	return nil
}

// PricingTable is the default pricing with the configured overrides applied.
func (c *MeterConfiguration) PricingTable() cost.PricingTable {
	return cost.DefaultPricing().Merge(c.Pricing)
}

// Source returns where the results of this configuration live.
func (c *MeterConfiguration) Source() (telemetry.Source, error) {
	if c.UseBucket {
		return telemetry.NewBucketSource(c.Bucket)
	}
	return telemetry.NewDirSource(c.ResultsDir), nil
}
