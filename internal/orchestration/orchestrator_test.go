package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agbru/grovertally/internal/chart"
	chartmocks "github.com/agbru/grovertally/internal/chart/mocks"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/sampler"
	"github.com/agbru/grovertally/internal/sampler/mocks"
	"github.com/agbru/grovertally/internal/tally"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingPresenter captures what AnalyzeResults hands to the presenter.
type recordingPresenter struct {
	entries []tally.Entry
	summary *tally.Summary
}

func (p *recordingPresenter) PresentTable(entries []tally.Entry, out io.Writer) {
	p.entries = entries
	fmt.Fprintln(out, "table")
}

func (p *recordingPresenter) PresentSummary(s tally.Summary, _ PresentationOptions, out io.Writer) {
	p.summary = &s
	fmt.Fprintln(out, "summary")
}

type codeHandler struct{ err error }

func (h *codeHandler) HandleError(err error, _ time.Duration, _ io.Writer) int {
	h.err = err
	return apperrors.ExitCodeFor(err)
}

// collectingReporter records every update it receives.
type collectingReporter struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (r *collectingReporter) DisplayProgress(ch <-chan ProgressUpdate, _ int, _ io.Writer) {
	for u := range ch {
		r.mu.Lock()
		r.updates = append(r.updates, u)
		r.mu.Unlock()
	}
}

func TestExecuteTrials_CollectsOutputsInOrder(t *testing.T) {
	t.Parallel()
	s := sampler.Sequence(3, 7, 3, 9)
	rep := &collectingReporter{}

	outputs, err := ExecuteTrials(context.Background(), s, Plan{N: 21, Trials: 4}, rep, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7, 3, 9}, outputs)

	require.Len(t, rep.updates, 8)
	for i := 0; i < 4; i++ {
		start, done := rep.updates[2*i], rep.updates[2*i+1]
		assert.Equal(t, TrialStarted, start.Phase)
		assert.Equal(t, i, start.Index)
		assert.Equal(t, 4, start.Total)
		assert.Equal(t, TrialCompleted, done.Phase)
		assert.Equal(t, outputs[i], done.Output)
	}
}

func TestExecuteTrials_CallsSamplerExactlyRTimes(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSampler(ctrl)
	m.EXPECT().Name().Return("mock").AnyTimes()
	m.EXPECT().Sample(gomock.Any(), uint64(15)).Return(int64(5), nil).Times(6)

	outputs, err := ExecuteTrials(context.Background(), m, Plan{N: 15, Trials: 6}, NullProgressReporter{}, io.Discard)
	require.NoError(t, err)
	assert.Len(t, outputs, 6)
}

func TestExecuteTrials_ZeroTrials(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSampler(ctrl)
	m.EXPECT().Name().Return("mock").AnyTimes()

	outputs, err := ExecuteTrials(context.Background(), m, Plan{N: 21, Trials: 0}, nil, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, outputs)
}

func TestExecuteTrials_FailureAbortsAndDiscards(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSampler(ctrl)
	boom := errors.New("simulator crashed")
	m.EXPECT().Name().Return("mock").AnyTimes()
	gomock.InOrder(
		m.EXPECT().Sample(gomock.Any(), gomock.Any()).Return(int64(3), nil).Times(2),
		m.EXPECT().Sample(gomock.Any(), gomock.Any()).Return(int64(0), boom),
	)

	var observed []int
	obs := TrialObserverFunc(func(i int, _ int64, _ time.Duration, err error) {
		observed = append(observed, i)
	})

	outputs, err := ExecuteTrials(context.Background(), m, Plan{N: 21, Trials: 10, Observer: obs}, NullProgressReporter{}, io.Discard)
	assert.Nil(t, outputs, "partial outputs are discarded")
	var trialErr apperrors.TrialError
	require.ErrorAs(t, err, &trialErr)
	assert.Equal(t, 2, trialErr.Index)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1, 2}, observed)
	assert.Equal(t, apperrors.ExitErrorTrial, apperrors.ExitCodeFor(err))
}

func TestExecuteTrials_Cancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := sampler.Func(func(context.Context, uint64) (int64, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return 1, nil
	})

	outputs, err := ExecuteTrials(ctx, s, Plan{N: 21, Trials: 100}, NullProgressReporter{}, io.Discard)
	assert.Nil(t, outputs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls, "cancellation is checked between trials")
	assert.Equal(t, apperrors.ExitErrorCanceled, apperrors.ExitCodeFor(err))
}

func TestExecuteTrials_Deadline(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s := sampler.Func(func(ctx context.Context, _ uint64) (int64, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Millisecond):
			return 1, nil
		}
	})

	_, err := ExecuteTrials(ctx, s, Plan{N: 21, Trials: 10_000}, NullProgressReporter{}, io.Discard)
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitErrorTimeout, apperrors.ExitCodeFor(err))
}

func TestExecuteTrials_ProgressFloodDoesNotDeadlock(t *testing.T) {
	t.Parallel()
	slow := ProgressReporterFunc(func(ch <-chan ProgressUpdate, _ int, _ io.Writer) {
		for range ch {
			time.Sleep(10 * time.Microsecond)
		}
	})
	s := sampler.Func(func(context.Context, uint64) (int64, error) { return 1, nil })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ExecuteTrials(context.Background(), s, Plan{N: 21, Trials: 500}, slow, io.Discard)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("ExecuteTrials did not complete")
	}
}

func TestNewReport(t *testing.T) {
	t.Parallel()
	r := NewReport([]int64{5, 9, 5, 9, 7}, 21)
	assert.Equal(t, []tally.Entry{{Output: 5, Count: 2}, {Output: 9, Count: 2}, {Output: 7, Count: 1}}, r.Entries)
	assert.Equal(t, 5, r.Trials)
	assert.Equal(t, 5, r.Summary.Total)
	require.Len(t, r.Chart.Bars, 3)
	for i, e := range r.Entries {
		assert.Equal(t, e.Output, r.Chart.Bars[i].Output)
		assert.Equal(t, e.Count, r.Chart.Bars[i].Count)
	}
	assert.Equal(t, "Outputs for Grover's factoring. N=21, 5 iterations", r.Chart.Title)
}

func TestAnalyzeResults(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	renderer := chartmocks.NewMockRenderer(ctrl)
	report := NewReport([]int64{3, 3, 7}, 21)
	renderer.EXPECT().Render(report.Chart).Return(nil)

	presenter := &recordingPresenter{}
	var buf bytes.Buffer
	code := AnalyzeResults(report, PresentationOptions{N: 21, Trials: 3}, presenter, renderer, &codeHandler{}, &buf)

	assert.Equal(t, apperrors.ExitSuccess, code)
	assert.Equal(t, report.Entries, presenter.entries)
	assert.Nil(t, presenter.summary, "summary is verbose-only")
}

func TestAnalyzeResults_VerboseAndNoChart(t *testing.T) {
	t.Parallel()
	presenter := &recordingPresenter{}
	var buf bytes.Buffer
	code := AnalyzeResults(NewReport([]int64{3}, 21), PresentationOptions{Verbose: true}, presenter, nil, &codeHandler{}, &buf)

	assert.Equal(t, apperrors.ExitSuccess, code)
	require.NotNil(t, presenter.summary)
	assert.Equal(t, "table\nsummary\n", buf.String())
}

func TestAnalyzeResults_RendererFailure(t *testing.T) {
	t.Parallel()
	handler := &codeHandler{}
	failing := chart.RendererFunc(func(chart.Spec) error { return errors.New("disk full") })
	var buf bytes.Buffer

	code := AnalyzeResults(NewReport([]int64{1}, 21), PresentationOptions{}, &recordingPresenter{}, failing, handler, &buf)
	assert.Equal(t, apperrors.ExitErrorGeneric, code)
	require.Error(t, handler.err)
	assert.True(t, strings.Contains(handler.err.Error(), "rendering chart"))
	assert.True(t, strings.HasPrefix(buf.String(), "table"), "table precedes the chart")
}
