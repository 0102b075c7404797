// Package app wires configuration, the sampler backend and the presentation
// layer into a runnable application.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/agbru/grovertally/internal/cli"
	"github.com/agbru/grovertally/internal/config"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/logging"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/sampler"
	"github.com/agbru/grovertally/internal/tui"
	"github.com/agbru/grovertally/internal/ui"
)

// Application represents the grovertally application instance.
type Application struct {
	Config    config.AppConfig
	Registry  *sampler.Registry
	ErrWriter io.Writer
	// Sampler, when set, is used instead of building one from the registry.
	Sampler sampler.Sampler
	Logger  logging.Logger
	RunID   string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRegistry sets the sampler registry used to resolve --sampler.
func WithRegistry(r *sampler.Registry) AppOption {
	return func(a *Application) { a.Registry = r }
}

// WithSampler injects a ready-made sampler.
func WithSampler(s sampler.Sampler) AppOption {
	return func(a *Application) { a.Sampler = s }
}

// WithLogger sets the logger. The default is a console logger on the error
// writer at the configured level.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, RunID: uuid.NewString()}
	for _, opt := range opts {
		opt(app)
	}
	if app.Registry == nil {
		app.Registry = sampler.NewDefaultRegistry()
	}

	programName := "grovertally"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Registry.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, cfg.LogLevel)
	}
	app.Logger = logging.With(app.Logger, logging.String("run_id", app.RunID))
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	s, err := a.resolveSampler()
	if err != nil {
		a.Logger.Error("sampler setup failed", err, logging.String("sampler", a.Config.Sampler))
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.TUI {
		return a.runTUI(ctx, s)
	}
	return a.runExperiment(ctx, s, out)
}

func (a *Application) resolveSampler() (sampler.Sampler, error) {
	if a.Sampler != nil {
		return a.Sampler, nil
	}
	return orchestration.SelectSampler(a.Config, a.Registry)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Registry.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive dashboard. The batch timeout is applied
// per batch by the dashboard so that a restart gets a fresh deadline.
func (a *Application) runTUI(ctx context.Context, s sampler.Sampler) int {
	a.Logger.Info("starting dashboard", logging.String("sampler", s.Name()), logging.Uint64("n", a.Config.N), logging.Int("trials", a.Config.Trials))
	return tui.Run(ctx, s, a.Config, Version)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
