// Package config provides the run configuration of the tape machine and
// wires it into the optimizer and the driver.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tapesim/api"
	"github.com/sarchlab/tapesim/core"
	"github.com/sarchlab/tapesim/opt"
	"gopkg.in/yaml.v3"
)

// Passes selects the optimizer passes.
type Passes struct {
	Coalesce bool `yaml:"coalesce"`
	Idioms   bool `yaml:"idioms"`
}

// Akita configures running on the simulation engine instead of stepping the
// machine directly.
type Akita struct {
	Enabled      bool    `yaml:"enabled"`
	FreqGHz      float64 `yaml:"freq_ghz"`
	StepsPerTick int     `yaml:"steps_per_tick"`
}

// RunConfig is the configuration of one run.
type RunConfig struct {
	Optimize bool   `yaml:"optimize"`
	Passes   Passes `yaml:"passes"`

	// MaxSteps bounds the number of retired instructions. Zero means no
	// bound.
	MaxSteps int `yaml:"max_steps"`

	Akita Akita `yaml:"akita"`

	// LogLevel is one of debug, info, trace, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() RunConfig {
	return RunConfig{
		Optimize: true,
		Passes: Passes{
			Coalesce: true,
			Idioms:   true,
		},
		Akita: Akita{
			FreqGHz:      1,
			StepsPerTick: 64,
		},
		LogLevel: "warn",
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their default values.
func Load(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes a YAML configuration on top of Default. Unknown fields are
// rejected.
func Parse(data []byte) (RunConfig, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RunConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}

	return cfg, nil
}

// Validate checks the value ranges.
func (c RunConfig) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}

	if c.Akita.FreqGHz <= 0 {
		return fmt.Errorf("akita.freq_ghz must be positive, got %g", c.Akita.FreqGHz)
	}

	if c.Akita.StepsPerTick < 1 {
		return fmt.Errorf("akita.steps_per_tick must be at least 1, got %d",
			c.Akita.StepsPerTick)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// EnabledPasses returns the passes that actually run: none when
// optimization is off.
func (c RunConfig) EnabledPasses() Passes {
	if !c.Optimize {
		return Passes{}
	}

	return c.Passes
}

// OptimizerOptions translates the enabled passes into optimizer options.
func (c RunConfig) OptimizerOptions() []opt.Option {
	var opts []opt.Option

	passes := c.EnabledPasses()

	if !passes.Coalesce {
		opts = append(opts, opt.WithoutCoalesce())
	}

	if !passes.Idioms {
		opts = append(opts, opt.WithoutIdioms())
	}

	return opts
}

// NewOptimizer returns the optimizer selected by the configuration, or nil
// when optimization is off.
func (c RunConfig) NewOptimizer() *opt.Optimizer {
	if !c.Optimize {
		return nil
	}

	return opt.NewOptimizer(c.OptimizerOptions()...)
}

// DriverBuilder returns a driver builder running on engine at the
// configured frequency.
func (c RunConfig) DriverBuilder(engine sim.Engine) api.DriverBuilder {
	return api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(sim.Freq(c.Akita.FreqGHz) * sim.GHz).
		WithStepsPerTick(c.Akita.StepsPerTick)
}

// Level returns the slog level for LogLevel.
func (c RunConfig) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}

	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "trace":
		return core.LevelTrace, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
