package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/grovertally/internal/config"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
	"github.com/agbru/grovertally/internal/ui"
)

// MockSpinner records calls made by DisplaySpinnerProgress.
type MockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffixes []string
}

func (m *MockSpinner) Start() { m.mu.Lock(); m.started = true; m.mu.Unlock() }
func (m *MockSpinner) Stop()  { m.mu.Lock(); m.stopped = true; m.mu.Unlock() }
func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	m.suffixes = append(m.suffixes, suffix)
	m.mu.Unlock()
}

func feed(updates ...orchestration.ProgressUpdate) <-chan orchestration.ProgressUpdate {
	ch := make(chan orchestration.ProgressUpdate, len(updates))
	for _, u := range updates {
		ch <- u
	}
	close(ch)
	return ch
}

func TestFormatTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		outputs []int64
		want    string
	}{
		{"counts and padding", []int64{3, 3, 7}, "Output,  Frequency\n3        2\n7        1\n"},
		{"tie keeps first appearance", []int64{5, 9, 5, 9}, "Output,  Frequency\n5        2\n9        2\n"},
		{"empty batch", nil, "Output,  Frequency\n"},
		{"wide values", []int64{123456789, -4}, "Output,  Frequency\n123456789 1\n-4       1\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FormatTable(tally.FromOutputs(tt.outputs).Entries())
			if got != tt.want {
				t.Errorf("FormatTable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPresentTable_Idempotent(t *testing.T) {
	t.Parallel()
	entries := tally.FromOutputs([]int64{1, 7, 7, 3, 1, 7}).Entries()
	var a, b bytes.Buffer
	CLIResultPresenter{}.PresentTable(entries, &a)
	CLIResultPresenter{}.PresentTable(entries, &b)
	if a.String() != b.String() {
		t.Errorf("re-rendering differs:\n%q\n%q", a.String(), b.String())
	}
}

func TestDisplayProgressLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayProgressLines(feed(
		orchestration.ProgressUpdate{Index: 0, Total: 2, Phase: orchestration.TrialStarted},
		orchestration.ProgressUpdate{Index: 0, Total: 2, Phase: orchestration.TrialCompleted, Output: 3},
		orchestration.ProgressUpdate{Index: 1, Total: 2, Phase: orchestration.TrialStarted},
		orchestration.ProgressUpdate{Index: 1, Total: 2, Phase: orchestration.TrialCompleted, Output: 7},
	), &buf)
	want := "Experiment: 0 of 2\nExperiment: 1 of 2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCLIProgressReporter_SpinnerFallsBackOffTerminal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	CLIProgressReporter{Spinner: true}.DisplayProgress(feed(
		orchestration.ProgressUpdate{Index: 0, Total: 1, Phase: orchestration.TrialStarted},
	), 1, &buf)
	if buf.String() != "Experiment: 0 of 1\n" {
		t.Errorf("non-terminal writer should get progress lines, got %q", buf.String())
	}
}

func TestDisplaySpinnerProgress(t *testing.T) {
	t.Parallel()
	s := &MockSpinner{}
	DisplaySpinnerProgress(feed(
		orchestration.ProgressUpdate{Index: 0, Total: 2, Phase: orchestration.TrialStarted},
		orchestration.ProgressUpdate{Index: 0, Total: 2, Phase: orchestration.TrialCompleted, Duration: time.Second},
	), 2, &bytes.Buffer{}, s)

	if !s.started || !s.stopped {
		t.Errorf("spinner should be started and stopped: %+v", s)
	}
	last := s.suffixes[len(s.suffixes)-1]
	if !strings.Contains(last, "1 of 2") || !strings.Contains(last, "50.0%") {
		t.Errorf("unexpected suffix %q", last)
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.5, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}

func TestPresentSummary(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.InitTheme(false) })

	entries := tally.FromOutputs([]int64{3, 3, 7, 1}).Entries()
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentSummary(tally.Summarize(entries, 21), orchestration.PresentationOptions{N: 21}, &buf)

	out := buf.String()
	for _, want := range []string{"Trials:           4", "Distinct outputs: 3", "Mode:             3 (50.0%)", "Entropy:          1.500 bits", "3 trials (75.0%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary should contain %q, got:\n%s", want, out)
		}
	}
}

func TestHandleError(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.InitTheme(false) })

	var buf bytes.Buffer
	code := CLIResultPresenter{}.HandleError(apperrors.TrialError{Index: 1, Cause: errors.New("exit status 1")}, 0, &buf)
	if code != apperrors.ExitErrorTrial {
		t.Errorf("code = %d, want %d", code, apperrors.ExitErrorTrial)
	}
	if !strings.Contains(buf.String(), "Status: Failure") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.InitTheme(false) })

	var buf bytes.Buffer
	PrintExecutionConfig(config.DefaultConfig(), "exec", "", &buf)
	if !strings.Contains(buf.String(), "Running 100 trials of the exec sampler for N=21, timeout none.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "replayed") {
		t.Errorf("no replay source expected:\n%s", buf.String())
	}

	buf.Reset()
	PrintExecutionConfig(config.DefaultConfig(), "replay", "runs.txt", &buf)
	if !strings.Contains(buf.String(), "Outputs replayed from runs.txt.") {
		t.Errorf("missing replay source:\n%s", buf.String())
	}
}

func TestDisplayExecutionTime(t *testing.T) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.InitTheme(false) })

	var buf bytes.Buffer
	DisplayExecutionTime(10, 2*time.Second, &buf)
	if !strings.Contains(buf.String(), "Completed 10 trials in 2s (5.0/s).") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
