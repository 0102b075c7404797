package tui

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/grovertally/internal/config"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/metrics"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/sampler"
	"github.com/agbru/grovertally/internal/sysmon"
)

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	sampler    sampler.Sampler
	generation uint64
	done       bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// Layout constants for the dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 8
	LogsPanelWidthPercent = 45
	MetricsPanelHeight    = 6
)

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) logsWidth() int {
	return l.width * LogsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.logsWidth()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) histogramHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header    HeaderModel
	logs      LogsModel
	metrics   MetricsModel
	histogram HistogramModel
	footer    FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	config    config.AppConfig
	ref       *programRef
	memory    *metrics.MemoryCollector
	paused    bool
}

// NewModel creates a dashboard that runs cfg.Trials trials of s.
func NewModel(parentCtx context.Context, s sampler.Sampler, cfg config.AppConfig, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)

	logs := NewLogsModel()
	logs.AddExecutionConfig(cfg, s.Name())
	keymap := DefaultKeyMap()

	return Model{
		header:    NewHeaderModel(version, fmt.Sprintf("N=%d · %d trials · %s", cfg.N, cfg.Trials, s.Name())),
		logs:      logs,
		metrics:   NewMetricsModel(),
		histogram: NewHistogramModel(cfg.N, cfg.Trials),
		footer:    NewFooterModel(keymap),
		keymap:    keymap,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			sampler:  s,
			exitCode: apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		config:    cfg,
		ref:       &programRef{},
		memory:    metrics.NewMemoryCollector(),
	}
}

// Init starts the first batch.
func (m Model) Init() tea.Cmd {
	return m.startCmds()
}

func (m Model) startCmds() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startBatchCmd(m.ref, m.ctx, m.sampler, m.config, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages. Messages from a batch other than the
// current generation are dropped.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case TrialMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.histogram.AddTrial(msg.Update, msg.Snapshot)
		m.metrics.UpdateProgress(msg.Snapshot, m.histogram.live.Len())
		if !m.paused {
			m.logs.AddTrial(msg.Update)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case TableMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.logs.AddTable(msg.Entries)
		return m, nil

	case SummaryMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.logs.AddSummary(msg.Summary)
		m.metrics.UpdateSummary(msg.Summary)
		return m, nil

	case ChartMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.histogram.SetFinal(msg.Spec)
		return m, nil

	case ErrorMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.logs.AddError(msg)
		m.histogram.SetFailed()
		m.footer.SetError(true)
		return m, nil

	case BatchCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		if !m.done {
			m.exitCode = apperrors.ExitCodeFor(msg.Err)
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(m.memory), sampleSysStatsCmd(), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.metrics.UpdateSysStats(msg)
		m.histogram.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		return m.restart()

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		m.logs.Update(msg)
		return m, nil
	}

	return m, nil
}

// restart cancels the running batch and starts a new one under the next
// generation.
func (m Model) restart() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	m.ctx, m.cancel = context.WithCancel(m.parentCtx)
	if r, ok := m.sampler.(sampler.Rewinder); ok {
		r.Rewind()
	}

	m.header.Reset()
	m.logs.Reset()
	m.logs.AddExecutionConfig(m.config, m.sampler.Name())
	m.histogram.Reset()
	m.metrics = NewMetricsModel()
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.footer.SetDone(false)
	m.footer.SetError(false)
	m.footer.SetPaused(false)
	m.done = false
	m.paused = false
	m.exitCode = apperrors.ExitSuccess

	return m, m.startCmds()
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	rightCol := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.histogram.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.logs.View(), rightCol)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.logs.SetSize(m.logsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.histogram.SetSize(m.rightWidth(), m.histogramHeight())
}

// ExitCode returns the exit code of the last finished batch.
func (m Model) ExitCode() int { return m.exitCode }

// Run is the public entry point for the dashboard mode. It runs the
// bubbletea program and returns the process exit code.
func Run(ctx context.Context, s sampler.Sampler, cfg config.AppConfig, version string) int {
	// Rebuild styles from the theme chosen by the caller.
	initTUIStyles()

	model := NewModel(ctx, s, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startBatchCmd runs one batch and reports it through the bridge. The
// returned BatchCompleteMsg is delivered after every bridged message.
func startBatchCmd(ref sender, ctx context.Context, s sampler.Sampler, cfg config.AppConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return BatchCompleteMsg{ExitCode: runBatch(ref, ctx, s, cfg, gen), Generation: gen}
	}
}

func runBatch(ref sender, ctx context.Context, s sampler.Sampler, cfg config.AppConfig, gen uint64) int {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	reporter := &TUIProgressReporter{ref: ref, generation: gen}
	presenter := &TUIResultPresenter{ref: ref, generation: gen}

	start := time.Now()
	outputs, err := orchestration.ExecuteTrials(ctx, s, orchestration.Plan{N: cfg.N, Trials: cfg.Trials}, reporter, io.Discard)
	if err != nil {
		return presenter.HandleError(err, time.Since(start), io.Discard)
	}
	report := orchestration.NewReport(outputs, cfg.N)
	opts := orchestration.PresentationOptions{N: cfg.N, Trials: cfg.Trials, Verbose: true}
	return orchestration.AnalyzeResults(report, opts, presenter, presenter, presenter, io.Discard)
}

// tickCmd returns a command that sends a TickMsg after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd(mc *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		snap := mc.Snapshot()
		return MemStatsMsg{
			HeapAlloc:    snap.HeapAlloc,
			Sys:          snap.Sys,
			NumGC:        snap.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent, ProcRSS: s.ProcRSS}
	}
}

// watchContextCmd waits for the batch context to end.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
