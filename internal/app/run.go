package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/grovertally/internal/chart"
	"github.com/agbru/grovertally/internal/cli"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/logging"
	"github.com/agbru/grovertally/internal/metrics"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/sampler"
)

// runExperiment runs one console batch: progress, table, optional summary,
// chart sinks, then the report and metrics files.
func (a *Application) runExperiment(ctx context.Context, s sampler.Sampler, out io.Writer) int {
	if a.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancel()
	}

	// Output paths are validated before any trial runs.
	renderer, err := a.chartSinks(out)
	if err == nil {
		err = cli.CheckReportPath(a.Config.OutputFile)
	}
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}

	source := samplerSource(s)
	if a.Config.Verbose {
		cli.PrintExecutionConfig(a.Config, s.Name(), source, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{Spinner: a.Config.Spinner}
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
	}

	collector := metrics.NewCollector()
	defer a.writeMetrics(collector)
	presenter := cli.CLIResultPresenter{}
	plan := orchestration.Plan{
		N:        a.Config.N,
		Trials:   a.Config.Trials,
		Observer: a.trialObserver(collector),
	}

	fields := []logging.Field{logging.String("sampler", s.Name()), logging.Uint64("n", plan.N), logging.Int("trials", plan.Trials)}
	if source != "" {
		fields = append(fields, logging.String("source", source))
	}
	a.Logger.Info("batch started", fields...)
	start := time.Now()
	outputs, err := orchestration.ExecuteTrials(ctx, s, plan, reporter, out)
	elapsed := time.Since(start)
	if err != nil {
		a.Logger.Error("batch aborted", err, logging.Duration("elapsed", elapsed))
		return presenter.HandleError(err, elapsed, a.ErrWriter)
	}

	report := orchestration.NewReport(outputs, a.Config.N)
	collector.RecordEntries(report.Entries)
	opts := orchestration.PresentationOptions{N: a.Config.N, Trials: a.Config.Trials, Verbose: a.Config.Verbose}
	code := orchestration.AnalyzeResults(report, opts, presenter, renderer, presenter, out)
	a.Logger.Info("batch completed",
		logging.Int("distinct", report.Summary.Distinct), logging.Duration("elapsed", elapsed))

	if a.Config.Verbose {
		cli.DisplayExecutionTime(a.Config.Trials, elapsed, out)
	}
	if code != apperrors.ExitSuccess {
		return code
	}

	if a.Config.OutputFile != "" {
		file := cli.ReportFile{
			RunID:       a.RunID,
			GeneratedAt: time.Now().UTC(),
			Sampler:     s.Name(),
			N:           a.Config.N,
			Trials:      a.Config.Trials,
			Duration:    elapsed,
			Entries:     report.Entries,
			Summary:     report.Summary,
		}
		if err := cli.WriteReportToFile(file, a.Config.OutputFile); err != nil {
			a.Logger.Error("writing report failed", err, logging.String("path", a.Config.OutputFile))
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitCodeFor(err)
		}
		if !a.Config.Quiet {
			fmt.Fprintln(out)
			cli.DisplaySavedReport(a.Config.OutputFile, out)
		}
	}
	return apperrors.ExitSuccess
}

// samplerSource returns where a replaying sampler reads its outputs, or ""
// for live samplers.
func samplerSource(s sampler.Sampler) string {
	if r, ok := s.(interface{ Source() string }); ok {
		return r.Source()
	}
	return ""
}

// chartSinks returns the renderer for the configured outputs, or nil for
// table-only runs.
func (a *Application) chartSinks(out io.Writer) (chart.Renderer, error) {
	var sinks chart.Multi
	if !a.Config.NoChart {
		sinks = append(sinks, chart.NewTextRenderer(out))
	}
	if a.Config.ChartFile != "" {
		pr, err := chart.NewPlotRenderer(a.Config.ChartFile)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pr)
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// trialObserver records every trial in the collector and the debug log.
func (a *Application) trialObserver(collector *metrics.Collector) orchestration.TrialObserver {
	return orchestration.TrialObserverFunc(func(index int, output int64, d time.Duration, err error) {
		collector.ObserveTrial(index, output, d, err)
		if err != nil {
			a.Logger.Warn("trial failed", logging.Int("trial", index), logging.Err(err))
			return
		}
		a.Logger.Debug("trial completed",
			logging.Int("trial", index), logging.Int64("output", output), logging.Duration("duration", d))
	})
}

func (a *Application) writeMetrics(collector *metrics.Collector) {
	if a.Config.MetricsFile == "" {
		return
	}
	if err := collector.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.Logger.Error("writing metrics failed", err, logging.String("path", a.Config.MetricsFile))
		fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
	}
}
