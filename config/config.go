// SPDX-License-Identifier: MIT

// Package config loads the YAML run configuration used by the eegtk command.
//
// A file carries the artifact store, logging, and the two operations:
//
//	store:
//	  root: ./res
//	  overwrite: false
//	  lock_timeout: 100s
//	workers: 4
//	sources: [subj01, subj02]
//	bin:
//	  pattern: voltage
//	  name: voltage_win
//	  bins:
//	    events: {field: category}
//	    time: [[0, 200], [200, 400]]
//	classify:
//	  pattern: voltage_win
//	  name: cat
//	  regressor: [category]
//	  selector: [session]
//	  train: centroid
//	  metrics: [{name: accuracy}]
//	  iter:
//	    time: each
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/binning"
	"github.com/mortonne/eeg-analysis-toolbox/crossval"
	"github.com/mortonne/eeg-analysis-toolbox/logging"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/resample"
)

// Config is the root of a run configuration file.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Logging  logging.Config `yaml:"logging"`
	Workers  int            `yaml:"workers"`
	Sources  []string       `yaml:"sources"`
	Bin      BinConfig      `yaml:"bin"`
	Classify ClassifyConfig `yaml:"classify"`
}

// StoreConfig locates the artifact store.
type StoreConfig struct {
	Root        string `yaml:"root"`
	Overwrite   bool   `yaml:"overwrite"`
	LockTimeout string `yaml:"lock_timeout"`
}

// AxisSpecs holds the raw, YAML-decoded bin spec of every axis. Each value
// is interpreted by binning.ParseSpec.
type AxisSpecs struct {
	Events any `yaml:"events"`
	Chan   any `yaml:"chan"`
	Time   any `yaml:"time"`
	Freq   any `yaml:"freq"`
}

// Specs parses every non-empty axis entry.
func (a AxisSpecs) Specs() (binning.Specs, error) {
	var specs binning.Specs
	for ax, raw := range [pattern.Rank]any{a.Events, a.Chan, a.Time, a.Freq} {
		if raw == nil {
			continue
		}
		s, err := binning.ParseSpec(pattern.Axis(ax), raw)
		if err != nil {
			return binning.Specs{}, err
		}
		specs[ax] = &s
	}
	return specs, nil
}

// BinConfig rebins an existing pattern into a new one.
type BinConfig struct {
	Pattern string    `yaml:"pattern"`
	Name    string    `yaml:"name"`
	Bins    AxisSpecs `yaml:"bins"`
}

// MetricConfig names a built-in metric and its options.
type MetricConfig struct {
	Name string         `yaml:"name"`
	Opts map[string]any `yaml:"opts"`
}

// ClassifyConfig configures cross-validated classification of a pattern.
type ClassifyConfig struct {
	Pattern       string         `yaml:"pattern"`
	Name          string         `yaml:"name"`
	Regressor     []string       `yaml:"regressor"`
	TestRegressor []string       `yaml:"test_regressor"`
	Selector      []string       `yaml:"selector"`
	TrainGroups   []string       `yaml:"train_groups"`
	Sampling      string         `yaml:"sampling"`
	Reps          int            `yaml:"reps"`
	Seed          int64          `yaml:"seed"`
	Train         string         `yaml:"train"`
	TrainOpts     map[string]any `yaml:"train_opts"`
	Test          string         `yaml:"test"`
	Metrics       []MetricConfig `yaml:"metrics"`
	Iter          AxisSpecs      `yaml:"iter"`
}

// DefaultConfig returns the defaults applied before a file is read.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Root:        "res",
			LockTimeout: artifact.DefaultLockTimeout.String(),
		},
		Logging: logging.Config{Level: "info"},
		Workers: 1,
		Classify: ClassifyConfig{
			Sampling: resample.None.String(),
			Reps:     1,
			Train:    "centroid",
			Metrics:  []MetricConfig{{Name: "accuracy"}},
		},
	}
}

// Load reads a YAML file over DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the sections that are in use: bin when bin.name is set,
// classify when classify.name is set.
func (c *Config) Validate() error {
	if c.Store.Root == "" {
		return fmt.Errorf("config: store.root is empty: %w", pattern.ErrConfig)
	}
	if _, err := c.LockTimeout(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers %d must be at least 1: %w", c.Workers, pattern.ErrConfig)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: no sources listed: %w", pattern.ErrConfig)
	}
	if c.Bin.Name != "" {
		if c.Bin.Pattern == "" {
			return fmt.Errorf("config: bin.pattern not specified: %w", pattern.ErrConfig)
		}
		if _, err := c.Bin.Bins.Specs(); err != nil {
			return fmt.Errorf("config: bin.bins: %w", err)
		}
	}
	if c.Classify.Name != "" {
		if _, err := c.Classify.Validator(); err != nil {
			return err
		}
		if _, err := c.Classify.Iter.Specs(); err != nil {
			return fmt.Errorf("config: classify.iter: %w", err)
		}
		cl := c.Classify
		switch {
		case cl.Pattern == "":
			return fmt.Errorf("config: classify.pattern not specified: %w", pattern.ErrConfig)
		case len(cl.Regressor) == 0:
			return fmt.Errorf("config: classify.regressor not specified: %w", pattern.ErrConfig)
		case len(cl.Selector) == 0:
			return fmt.Errorf("config: classify.selector not specified: %w", pattern.ErrConfig)
		}
	}
	return nil
}

// LockTimeout parses store.lock_timeout.
func (c *Config) LockTimeout() (time.Duration, error) {
	if c.Store.LockTimeout == "" {
		return artifact.DefaultLockTimeout, nil
	}
	d, err := time.ParseDuration(c.Store.LockTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: store.lock_timeout %q: %w", c.Store.LockTimeout, pattern.ErrConfig)
	}
	return d, nil
}

// Validator resolves the named built-ins into a crossval.Config. The test
// function defaults to the one named like the trainer.
func (cc ClassifyConfig) Validator() (crossval.Config, error) {
	train, err := crossval.LookupTrainer(cc.Train)
	if err != nil {
		return crossval.Config{}, fmt.Errorf("config: classify.train: %w", err)
	}
	testName := cc.Test
	if testName == "" {
		testName = cc.Train
	}
	test, err := crossval.LookupTester(testName)
	if err != nil {
		return crossval.Config{}, fmt.Errorf("config: classify.test: %w", err)
	}
	mode, err := resample.ParseMode(cc.Sampling)
	if err != nil {
		return crossval.Config{}, fmt.Errorf("config: classify.sampling: %w", err)
	}
	if mode != resample.None && len(cc.TrainGroups) == 0 {
		return crossval.Config{}, fmt.Errorf("config: classify.sampling %s needs train_groups: %w", mode, pattern.ErrConfig)
	}
	metrics := make([]crossval.Metric, 0, len(cc.Metrics))
	for _, m := range cc.Metrics {
		fn, err := crossval.LookupMetric(m.Name)
		if err != nil {
			return crossval.Config{}, fmt.Errorf("config: classify.metrics: %w", err)
		}
		metrics = append(metrics, crossval.Metric{Name: m.Name, Fn: fn, Opts: m.Opts})
	}

	return crossval.Config{
		Train:     train,
		TrainOpts: cc.TrainOpts,
		Test:      test,
		Metrics:   metrics,
		Sampling:  mode,
		Reps:      cc.Reps,
		Seed:      cc.Seed,
	}, nil
}
