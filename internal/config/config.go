// Package config loads and validates the solver's YAML configuration
// object (spec §6.2), mirroring the layered default/file/validate pattern
// used for MCTS configuration elsewhere in the retrieved corpus.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/arkenfold/qbfsolver/internal/qbf"
)

// Config is the full set of options recognized on the command line and in
// a config file, matching spec §6's option set.
type Config struct {
	RunBenchmark   bool   `yaml:"run_benchmark"`
	BenchmarkPath  string `yaml:"benchmark_path"`
	InstancePath   string `yaml:"instance_path"`
	OutputFileName string `yaml:"output_file_name"`

	SolverType       string `yaml:"solver_type"` // "cdcl" or "dpll"
	LiteralSelection string `yaml:"literal_selection"` // "ordered" or "vss"

	Preprocess          bool `yaml:"preprocess"`
	UniversalReduction  bool `yaml:"universal_reduction"`
	PureLiteralDeletion bool `yaml:"pure_literal_deletion"`
	Restarts            bool `yaml:"restarts"`

	PreResolution       bool                `yaml:"pre_resolution"`
	PreResolutionConfig PreResolutionConfig `yaml:"pre_resolution_config"`

	ClauseDecay   float64 `yaml:"clause_decay"`
	VariableDecay float64 `yaml:"variable_decay"`
	PhaseSaving   bool    `yaml:"phase_saving"`
	RestartBase   int64   `yaml:"restart_base"`

	MaxConflicts int64         `yaml:"max_conflicts"`
	Timeout      time.Duration `yaml:"timeout"`

	LogLevel string `yaml:"log_level"`
}

// PreResolutionConfig mirrors qbf.PreResolutionConfig, with MaxClauseLength
// able to unmarshal either an integer or the literal string "infinity"
// (spec §9, Open Question: "max_clause_length: infinity"). MinRatio and
// MaxRatio are both reals in [0, 1] (spec §6.2).
type PreResolutionConfig struct {
	MinRatio    float64      `yaml:"min_ratio"`
	MaxRatio    float64      `yaml:"max_ratio"`
	MaxClauseLength ClauseLength `yaml:"max_clause_length"`
	RepeatAbove int          `yaml:"repeat_above"`
	Iterations  int          `yaml:"iterations"`
}

// ClauseLength unmarshals either a YAML integer or the string "infinity",
// the latter mapping to qbf.InfiniteClauseLength.
type ClauseLength int

func (c *ClauseLength) UnmarshalYAML(value *yaml.Node) error {
	var asInt int
	if err := value.Decode(&asInt); err == nil {
		*c = ClauseLength(asInt)
		return nil
	}

	var asString string
	if err := value.Decode(&asString); err != nil {
		return errors.Wrap(err, "max_clause_length: must be an integer or \"infinity\"")
	}
	if asString == "infinity" {
		*c = qbf.InfiniteClauseLength
		return nil
	}
	return errors.Errorf("max_clause_length: unrecognized string %q (only \"infinity\" is accepted)", asString)
}

// Default returns the configuration matching qbf.DefaultOptions.
func Default() Config {
	return Config{
		SolverType:          "cdcl",
		LiteralSelection:    "vss",
		Preprocess:          true,
		UniversalReduction:  true,
		PureLiteralDeletion: true,
		Restarts:            true,
		PreResolution:       false,
		PreResolutionConfig: PreResolutionConfig{
			MinRatio:        0,
			MaxRatio:        1.0,
			MaxClauseLength: qbf.InfiniteClauseLength,
			RepeatAbove:     16,
			Iterations:      2,
		},
		ClauseDecay:   0.999,
		VariableDecay: 0.95,
		PhaseSaving:   false,
		RestartBase:   100,
		MaxConflicts:  -1,
		Timeout:       -1,
		LogLevel:      "info",
	}
}

// Load reads and merges a YAML config file on top of Default, rejecting any
// key the Config struct does not recognize (spec §6.2: "unrecognized keys
// are a configuration error, not a silently ignored typo"). Load does not
// call Validate; callers apply their own overrides first and then validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading %q", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %q", path)
	}

	return cfg, nil
}

// Validate aggregates every configuration error found, rather than
// stopping at the first one, so a user fixing their config file sees every
// problem in one pass.
func (c *Config) Validate() error {
	var errs *multierror.Error

	switch c.SolverType {
	case "cdcl":
	case "dpll":
		if c.Restarts {
			// Restarts are meaningless without clause learning; spec §6
			// has SolverType=DPLL silently disable Restarts rather than
			// erroring, since it is not a user mistake so much as a
			// redundant combination.
			c.Restarts = false
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("solver_type: must be \"cdcl\" or \"dpll\", got %q", c.SolverType))
	}

	switch c.LiteralSelection {
	case "ordered", "vss":
	default:
		errs = multierror.Append(errs, fmt.Errorf("literal_selection: must be \"ordered\" or \"vss\", got %q", c.LiteralSelection))
	}

	if c.RunBenchmark && c.BenchmarkPath == "" {
		errs = multierror.Append(errs, fmt.Errorf("benchmark_path: required when run_benchmark is true"))
	}
	if !c.RunBenchmark && c.InstancePath == "" {
		errs = multierror.Append(errs, fmt.Errorf("instance_path: required when run_benchmark is false"))
	}
	if c.ClauseDecay <= 0 || c.ClauseDecay > 1 {
		errs = multierror.Append(errs, fmt.Errorf("clause_decay: must be in (0, 1], got %v", c.ClauseDecay))
	}
	if c.VariableDecay <= 0 || c.VariableDecay > 1 {
		errs = multierror.Append(errs, fmt.Errorf("variable_decay: must be in (0, 1], got %v", c.VariableDecay))
	}
	if c.PreResolution {
		pr := c.PreResolutionConfig
		if pr.MinRatio < 0 || pr.MinRatio > 1 {
			errs = multierror.Append(errs, fmt.Errorf("pre_resolution_config.min_ratio: must be in [0, 1], got %v", pr.MinRatio))
		}
		if pr.MaxRatio < 0 || pr.MaxRatio > 1 {
			errs = multierror.Append(errs, fmt.Errorf("pre_resolution_config.max_ratio: must be in [0, 1], got %v", pr.MaxRatio))
		}
		if pr.MinRatio > pr.MaxRatio {
			errs = multierror.Append(errs, fmt.Errorf("pre_resolution_config.min_ratio: must be <= max_ratio"))
		}
		if pr.Iterations < 1 {
			errs = multierror.Append(errs, fmt.Errorf("pre_resolution_config.iterations: must be >= 1"))
		}
	}

	return errs.ErrorOrNil()
}

// Algorithm translates SolverType into a qbf.Algorithm.
func (c Config) Algorithm() qbf.Algorithm {
	if c.SolverType == "dpll" {
		return qbf.DPLL
	}
	return qbf.CDCL
}

// LiteralSelectionPolicy translates LiteralSelection into a qbf.LiteralSelection.
func (c Config) LiteralSelectionPolicy() qbf.LiteralSelection {
	if c.LiteralSelection == "ordered" {
		return qbf.Ordered
	}
	return qbf.VSS
}

// Options builds the qbf.Options this configuration describes.
func (c Config) Options() qbf.Options {
	return qbf.Options{
		Algorithm:        c.Algorithm(),
		LiteralSelection: c.LiteralSelectionPolicy(),

		ClauseDecay:   c.ClauseDecay,
		VariableDecay: c.VariableDecay,
		PhaseSaving:   c.PhaseSaving,

		Restarts:            c.Restarts,
		RestartBase:         c.RestartBase,
		InitialLearntsRatio: 3,

		Preprocess:          c.Preprocess,
		UniversalReduction:  c.UniversalReduction,
		PureLiteralDeletion: c.PureLiteralDeletion,
		PreResolution:       c.PreResolution,
		PreResolutionConfig: qbf.PreResolutionConfig{
			MinRatio:        c.PreResolutionConfig.MinRatio,
			MaxRatio:        c.PreResolutionConfig.MaxRatio,
			MaxClauseLength: int(c.PreResolutionConfig.MaxClauseLength),
			RepeatAbove:     c.PreResolutionConfig.RepeatAbove,
			Iterations:      c.PreResolutionConfig.Iterations,
		},

		MaxConflicts: c.MaxConflicts,
		Timeout:      c.Timeout,
	}
}
