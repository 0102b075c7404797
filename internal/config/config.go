// Package config defines the application configuration and resolves it from
// command-line flags, GROVERTALLY_* environment variables, an optional YAML
// file and built-in defaults.
//
// Resolution order (highest priority first):
//  1. flags
//  2. environment variables (a .env file in the working directory is loaded first)
//  3. the YAML file named by --config or GROVERTALLY_CONFIG
//  4. defaults
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "GROVERTALLY_"

// Defaults for an experiment batch.
const (
	DefaultN       uint64 = 21
	DefaultTrials         = 100
	DefaultSampler        = "exec"
)

// MaxN is the largest accepted problem size. Outputs range over [0, 2N), which
// must fit an int64.
const MaxN uint64 = 1 << 62

// SupportedShells lists the shells accepted by --completion.
var SupportedShells = []string{"bash", "zsh", "fish"}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// AppConfig holds every setting of a run.
type AppConfig struct {
	// N is the problem size handed to the sampler (the number to factor).
	N uint64
	// Trials is the number of sampler invocations in the batch.
	Trials int

	Sampler      string
	Command      string
	Input        string
	Timeout      time.Duration
	TrialTimeout time.Duration

	TUI         bool
	NoChart     bool
	ChartFile   string
	OutputFile  string
	MetricsFile string
	ConfigFile  string
	LogLevel    string
	Spinner     bool
	Quiet       bool
	Verbose     bool
	NoColor     bool
	Completion  string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() AppConfig {
	return AppConfig{
		N:        DefaultN,
		Trials:   DefaultTrials,
		Sampler:  DefaultSampler,
		LogLevel: "warn",
	}
}

// ParseConfig builds the configuration for programName from args. Flag
// errors, including flag.ErrHelp, are returned unchanged; everything else is
// a ConfigError or ValidationError.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableSamplers []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := DefaultConfig()
	var showVersion bool

	fs.Uint64Var(&cfg.N, "n", cfg.N, "Problem size passed to the sampler (the number to factor).")
	fs.IntVar(&cfg.Trials, "trials", cfg.Trials, "Number of trials in the batch.")
	fs.IntVar(&cfg.Trials, "r", cfg.Trials, "Number of trials (shorthand).")
	fs.StringVar(&cfg.Sampler, "sampler", cfg.Sampler, fmt.Sprintf("Sampler backend: %s.", strings.Join(availableSamplers, ", ")))
	fs.StringVar(&cfg.Command, "command", "", "Command run by the exec sampler; {n} is replaced by the problem size.")
	fs.StringVar(&cfg.Input, "input", "", "Recorded outputs for the replay sampler (.txt or .yaml).")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "Deadline for the whole batch (0 = none).")
	fs.DurationVar(&cfg.TrialTimeout, "trial-timeout", 0, "Deadline for a single exec trial (0 = none).")
	fs.BoolVar(&cfg.TUI, "tui", false, "Run the interactive dashboard.")
	fs.BoolVar(&cfg.NoChart, "no-chart", false, "Print the frequency table only.")
	fs.StringVar(&cfg.ChartFile, "chart-file", "", "Also write the chart to an image file (.png, .svg, .pdf).")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the report to a file (.json, .csv, .msgpack).")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write the report to a file (shorthand).")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: "+strings.Join(logLevels, ", ")+".")
	fs.BoolVar(&cfg.Spinner, "spinner", false, "Show a spinner instead of one progress line per trial.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress progress output.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Suppress progress output (shorthand).")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print a distribution summary after the table.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Print a distribution summary (shorthand).")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a shell completion script: "+strings.Join(SupportedShells, ", ")+".")
	fs.BoolVar(&showVersion, "version", false, "Print version information.")
	fs.BoolVar(&showVersion, "V", false, "Print version information (shorthand).")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(errWriter, "Runs the external factoring sampler repeatedly and reports the output distribution.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	// A missing .env file is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, apperrors.WrapError(err, "loading .env")
	}

	if !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	if cfg.ConfigFile != "" {
		fileCfg, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		fileCfg.applyTo(&cfg, fs)
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(availableSamplers); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks field values. availableSamplers may be nil to skip the
// sampler name check.
func (c AppConfig) Validate(availableSamplers []string) error {
	if c.N == 0 {
		return apperrors.ValidationError{Field: "n", Message: "problem size must be at least 1"}
	}
	if c.N > MaxN {
		return apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("problem size must be at most %d", MaxN)}
	}
	if c.Trials < 0 {
		return apperrors.ValidationError{Field: "trials", Message: "must not be negative"}
	}
	if c.Timeout < 0 {
		return apperrors.ValidationError{Field: "timeout", Message: "must not be negative"}
	}
	if c.TrialTimeout < 0 {
		return apperrors.ValidationError{Field: "trial-timeout", Message: "must not be negative"}
	}
	if availableSamplers != nil && !slices.Contains(availableSamplers, c.Sampler) {
		return apperrors.ValidationError{Field: "sampler", Message: fmt.Sprintf("unknown sampler %q (available: %s)", c.Sampler, strings.Join(availableSamplers, ", "))}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return apperrors.ValidationError{Field: "log-level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.Completion != "" && !slices.Contains(SupportedShells, c.Completion) {
		return apperrors.ValidationError{Field: "completion", Message: fmt.Sprintf("unsupported shell %q", c.Completion)}
	}
	return nil
}
