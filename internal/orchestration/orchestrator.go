package orchestration

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/grovertally/internal/chart"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/sampler"
	"github.com/agbru/grovertally/internal/tally"
)

const tracerName = "github.com/agbru/grovertally/internal/orchestration"

// ProgressBufferSize is the capacity of the progress channel. A buffer keeps
// the trial loop from waiting on a slow display.
const ProgressBufferSize = 16

// Plan describes one experiment batch.
type Plan struct {
	// N is the problem size handed to every trial.
	N uint64
	// Trials is the number of sampler invocations.
	Trials int
	// Observer, if non-nil, is notified after every trial.
	Observer TrialObserver
}

// ExecuteTrials invokes s exactly plan.Trials times, one after the other, and
// returns the outputs in invocation order.
//
// Two goroutines share an errgroup: the trial loop, which is the only writer
// of the outputs slice and of progressChan, and the progress reporter, which
// drains progressChan until the loop closes it. The context is checked before
// every trial.
//
// The first failing trial aborts the batch. The returned error is an
// apperrors.TrialError and the partial outputs are discarded.
func ExecuteTrials(ctx context.Context, s sampler.Sampler, plan Plan, reporter ProgressReporter, out io.Writer) ([]int64, error) {
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ExecuteTrials", trace.WithAttributes(
		attribute.String("sampler", s.Name()),
		attribute.Int64("n", int64(plan.N)),
		attribute.Int("trials", plan.Trials),
	))
	defer span.End()

	progressChan := make(chan ProgressUpdate, ProgressBufferSize)
	outputs := make([]int64, 0, max(plan.Trials, 0))

	var g errgroup.Group
	g.Go(func() error {
		reporter.DisplayProgress(progressChan, plan.Trials, out)
		return nil
	})
	g.Go(func() error {
		defer close(progressChan)
		for i := 0; i < plan.Trials; i++ {
			if err := ctx.Err(); err != nil {
				return apperrors.TrialError{Index: i, Cause: err}
			}
			progressChan <- ProgressUpdate{Index: i, Total: plan.Trials, Phase: TrialStarted}

			v, d, err := runTrial(ctx, tracer, s, plan.N, i)
			if plan.Observer != nil {
				plan.Observer.ObserveTrial(i, v, d, err)
			}
			if err != nil {
				progressChan <- ProgressUpdate{Index: i, Total: plan.Trials, Phase: TrialFailed, Duration: d, Err: err}
				return apperrors.TrialError{Index: i, Cause: err}
			}
			outputs = append(outputs, v)
			progressChan <- ProgressUpdate{Index: i, Total: plan.Trials, Phase: TrialCompleted, Output: v, Duration: d}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return outputs, nil
}

func runTrial(ctx context.Context, tracer trace.Tracer, s sampler.Sampler, n uint64, index int) (int64, time.Duration, error) {
	ctx, span := tracer.Start(ctx, "Trial", trace.WithAttributes(attribute.Int("trial", index)))
	defer span.End()

	start := time.Now()
	v, err := s.Sample(ctx, n)
	d := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, d, err
	}
	span.SetAttributes(attribute.Int64("output", v))
	return v, d, nil
}

// Report is the aggregated form of a finished batch. The table, the summary
// and the chart are all derived from the same Entries.
type Report struct {
	N       uint64
	Trials  int
	Entries []tally.Entry
	Summary tally.Summary
	Chart   chart.Spec
}

// NewReport tallies outputs and orders them by descending count, ties in
// first-appearance order.
func NewReport(outputs []int64, n uint64) Report {
	entries := tally.FromOutputs(outputs).Entries()
	return Report{
		N:       n,
		Trials:  len(outputs),
		Entries: entries,
		Summary: tally.Summarize(entries, n),
		Chart:   chart.NewSpec(entries, n, len(outputs)),
	}
}

// AnalyzeResults presents a report: the frequency table, the summary when
// opts.Verbose is set, then the chart on renderer. A nil renderer prints the
// table only. A renderer failure is passed to errHandler and its exit code is
// returned; the table has already been written at that point.
func AnalyzeResults(report Report, opts PresentationOptions, presenter ResultPresenter, renderer chart.Renderer, errHandler ErrorHandler, out io.Writer) int {
	presenter.PresentTable(report.Entries, out)
	if opts.Verbose {
		presenter.PresentSummary(report.Summary, opts, out)
	}
	if renderer == nil {
		return apperrors.ExitSuccess
	}
	if err := renderer.Render(report.Chart); err != nil {
		return errHandler.HandleError(apperrors.WrapError(err, "rendering chart"), 0, out)
	}
	return apperrors.ExitSuccess
}
