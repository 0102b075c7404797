package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/format"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
	"github.com/agbru/grovertally/internal/ui"
)

// TableHeader is the first line of the frequency table.
const TableHeader = "Output,  Frequency"

// CLIProgressReporter implements orchestration.ProgressReporter for console
// output. By default it prints one "Experiment: i of R" line before every
// trial. With Spinner set, and when out is a terminal, it shows a spinner
// with a progress bar instead.
type CLIProgressReporter struct {
	Spinner bool
}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress picks the line or spinner display.
func (r CLIProgressReporter) DisplayProgress(progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	if r.Spinner && IsTerminal(out) {
		DisplaySpinnerProgress(progressChan, total, out, newSpinner(out))
		return
	}
	DisplayProgressLines(progressChan, out)
}

// DisplayProgressLines prints "Experiment: <i> of <R>" before each trial,
// with i zero-based.
func DisplayProgressLines(progressChan <-chan orchestration.ProgressUpdate, out io.Writer) {
	for u := range progressChan {
		if u.Phase == orchestration.TrialStarted {
			fmt.Fprintf(out, "Experiment: %d of %d\n", u.Index, u.Total)
		}
	}
}

// DisplaySpinnerProgress drives s from the update stream until the channel is
// closed, then stops it.
func DisplaySpinnerProgress(progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer, s Spinner) {
	tracker := orchestration.NewProgressTracker(total)
	s.UpdateSuffix(FormatSpinnerSuffix(tracker.Snapshot()))
	s.Start()
	defer s.Stop()
	for u := range progressChan {
		s.UpdateSuffix(FormatSpinnerSuffix(tracker.Update(u)))
	}
}

// FormatSpinnerSuffix renders the text shown next to the spinner.
func FormatSpinnerSuffix(snap orchestration.ProgressSnapshot) string {
	suffix := fmt.Sprintf(" Experiments %s %d of %d (%s)",
		progressBar(snap.Fraction, ProgressBarWidth), snap.Completed, snap.Total, format.FormatPercent(snap.Fraction))
	if snap.Completed > 0 && snap.Completed < snap.Total {
		suffix += " ETA " + format.FormatExecutionDuration(snap.ETA)
	}
	return suffix
}

// CLIResultPresenter implements orchestration.ResultPresenter and
// orchestration.ErrorHandler for the console.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// FormatTable renders the frequency table. Rows are left-aligned output
// values padded to eight characters followed by the count.
func FormatTable(entries []tally.Entry) string {
	var b strings.Builder
	b.WriteString(TableHeader)
	b.WriteByte('\n')
	for _, e := range entries {
		fmt.Fprintf(&b, "%-8d %d\n", e.Output, e.Count)
	}
	return b.String()
}

// PresentTable writes the frequency table without decoration so the output
// stays machine-readable.
func (CLIResultPresenter) PresentTable(entries []tally.Entry, out io.Writer) {
	fmt.Fprint(out, FormatTable(entries))
}

// PresentSummary writes the distribution summary.
func (CLIResultPresenter) PresentSummary(s tally.Summary, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Distribution Summary ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Trials:           %s%d%s\n", ui.ColorCyan(), s.Total, ui.ColorReset())
	fmt.Fprintf(out, "Distinct outputs: %s%d%s\n", ui.ColorCyan(), s.Distinct, ui.ColorReset())
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(out, "Mode:             %s%d%s (%s)\n", ui.ColorGreen(), s.Mode, ui.ColorReset(), format.FormatPercent(s.ModeShare))
	fmt.Fprintf(out, "Entropy:          %s%.3f bits%s\n", ui.ColorYellow(), s.EntropyBits, ui.ColorReset())
	fmt.Fprintf(out, "Factors of %d:    %s%d%s trials (%s)\n", opts.N, ui.ColorMagenta(), s.FactorHits, ui.ColorReset(),
		format.FormatPercent(float64(s.FactorHits)/float64(s.Total)))
}

// HandleError prints the failure status and returns the exit code for err.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleTrialError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider implements apperrors.ColorProvider with the active theme.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// DisplayExecutionTime prints the elapsed time of the batch.
func DisplayExecutionTime(trials int, elapsed time.Duration, out io.Writer) {
	fmt.Fprintf(out, "\nCompleted %s%d%s trials in %s%s%s (%s).\n",
		ui.ColorCyan(), trials, ui.ColorReset(),
		ui.ColorYellow(), format.FormatExecutionDuration(elapsed), ui.ColorReset(),
		format.FormatRate(trials, elapsed))
}
