// Package config loads engine settings from defaults, an optional config
// file and SQLCORE_ prefixed environment variables, in increasing order of
// precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/vegasq/sqlcore/planner"
	"github.com/vegasq/sqlcore/planner/physical"
)

// EnvPrefix prefixes every environment variable, e.g. SQLCORE_JOIN_BLOCK_SIZE
const EnvPrefix = "SQLCORE"

// Join configures the block hash join
type Join struct {
	BlockSize       int  `mapstructure:"block_size"`
	UseTermsFilter  bool `mapstructure:"use_terms_filter"`
	ProbeBatchLimit int  `mapstructure:"probe_batch_limit"`
}

// RareTopN configures the RARE and TOP commands
type RareTopN struct {
	DefaultSize int `mapstructure:"default_size"`
}

// Optimizer configures the rule driver
type Optimizer struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// Output configures result rendering
type Output struct {
	Format string `mapstructure:"format"`
}

// Config is the complete engine configuration
type Config struct {
	Join      Join      `mapstructure:"join"`
	RareTopN  RareTopN  `mapstructure:"raretopn"`
	Optimizer Optimizer `mapstructure:"optimizer"`
	Output    Output    `mapstructure:"output"`
}

// Formats lists the accepted output formats
var Formats = []string{"jsonl", "csv", "table"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("join.block_size", physical.DefaultBlockSize)
	v.SetDefault("join.use_terms_filter", true)
	v.SetDefault("join.probe_batch_limit", 0)
	v.SetDefault("raretopn.default_size", physical.DefaultRareTopNSize)
	v.SetDefault("optimizer.max_iterations", 100)
	v.SetDefault("output.format", "jsonl")
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(errors.Wrap(err, "default configuration"))
	}
	return cfg
}

// Load reads path, when not empty, and the environment on top of the
// defaults and validates the result
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Join.BlockSize < 1 {
		return errors.Newf("join.block_size must be at least 1, got %d", c.Join.BlockSize)
	}
	if c.Join.ProbeBatchLimit < 0 {
		return errors.Newf("join.probe_batch_limit must not be negative, got %d", c.Join.ProbeBatchLimit)
	}
	if c.RareTopN.DefaultSize < 1 {
		return errors.Newf("raretopn.default_size must be at least 1, got %d", c.RareTopN.DefaultSize)
	}
	if c.Optimizer.MaxIterations < 1 {
		return errors.Newf("optimizer.max_iterations must be at least 1, got %d", c.Optimizer.MaxIterations)
	}
	for _, f := range Formats {
		if c.Output.Format == f {
			return nil
		}
	}
	return errors.Newf("output.format must be one of %s, got %q", strings.Join(Formats, ", "), c.Output.Format)
}

// PlannerOptions converts the configuration to planner options
func (c *Config) PlannerOptions() planner.Options {
	return planner.Options{
		Join: physical.JoinOptions{
			BlockSize:      c.Join.BlockSize,
			ProbeLimit:     c.Join.ProbeBatchLimit,
			UseTermsFilter: c.Join.UseTermsFilter,
		},
		RareTopNSize: c.RareTopN.DefaultSize,
	}
}
