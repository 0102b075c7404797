package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// FileConfig is the YAML form of AppConfig. Pointer fields distinguish an
// absent key from a zero value.
//
//	n: 21
//	trials: 100
//	sampler: exec
//	command: python host.py --number {n}
//	timeout: 10m
type FileConfig struct {
	N            *uint64        `yaml:"n"`
	Trials       *int           `yaml:"trials"`
	Sampler      *string        `yaml:"sampler"`
	Command      *string        `yaml:"command"`
	Input        *string        `yaml:"input"`
	Timeout      *time.Duration `yaml:"timeout"`
	TrialTimeout *time.Duration `yaml:"trial_timeout"`
	TUI          *bool          `yaml:"tui"`
	NoChart      *bool          `yaml:"no_chart"`
	ChartFile    *string        `yaml:"chart_file"`
	OutputFile   *string        `yaml:"output"`
	MetricsFile  *string        `yaml:"metrics_file"`
	LogLevel     *string        `yaml:"log_level"`
	Spinner      *bool          `yaml:"spinner"`
	Quiet        *bool          `yaml:"quiet"`
	Verbose      *bool          `yaml:"verbose"`
	NoColor      *bool          `yaml:"no_color"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so that typos surface as configuration errors.
func LoadFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("cannot open config file: %v", err)
	}
	defer f.Close()

	var fc FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, apperrors.NewConfigError("invalid config file %s: %v", path, err)
	}
	return fc, nil
}

// applyTo copies every present key into cfg unless the matching flag was set.
func (fc FileConfig) applyTo(cfg *AppConfig, fs *flag.FlagSet) {
	setUint64(&cfg.N, fc.N, isFlagSet(fs, "n"))
	setValue(&cfg.Trials, fc.Trials, isFlagSetAny(fs, "trials", "r"))
	setValue(&cfg.Sampler, fc.Sampler, isFlagSet(fs, "sampler"))
	setValue(&cfg.Command, fc.Command, isFlagSet(fs, "command"))
	setValue(&cfg.Input, fc.Input, isFlagSet(fs, "input"))
	setValue(&cfg.Timeout, fc.Timeout, isFlagSet(fs, "timeout"))
	setValue(&cfg.TrialTimeout, fc.TrialTimeout, isFlagSet(fs, "trial-timeout"))
	setValue(&cfg.TUI, fc.TUI, isFlagSet(fs, "tui"))
	setValue(&cfg.NoChart, fc.NoChart, isFlagSet(fs, "no-chart"))
	setValue(&cfg.ChartFile, fc.ChartFile, isFlagSet(fs, "chart-file"))
	setValue(&cfg.OutputFile, fc.OutputFile, isFlagSetAny(fs, "output", "o"))
	setValue(&cfg.MetricsFile, fc.MetricsFile, isFlagSet(fs, "metrics-file"))
	setValue(&cfg.LogLevel, fc.LogLevel, isFlagSet(fs, "log-level"))
	setValue(&cfg.Spinner, fc.Spinner, isFlagSet(fs, "spinner"))
	setValue(&cfg.Quiet, fc.Quiet, isFlagSetAny(fs, "quiet", "q"))
	setValue(&cfg.Verbose, fc.Verbose, isFlagSetAny(fs, "verbose", "v"))
	setValue(&cfg.NoColor, fc.NoColor, isFlagSet(fs, "no-color"))
}

func setValue[T any](dst *T, src *T, flagSet bool) {
	if src != nil && !flagSet {
		*dst = *src
	}
}

func setUint64(dst *uint64, src *uint64, flagSet bool) { setValue(dst, src, flagSet) }
