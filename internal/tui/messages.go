package tui

import (
	"time"

	"github.com/agbru/grovertally/internal/chart"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
)

// Every message produced by a batch carries the generation it belongs to.
// A restart bumps the generation so late messages from the old batch are
// dropped.

// TrialMsg forwards one progress update with the aggregated snapshot.
type TrialMsg struct {
	Update     orchestration.ProgressUpdate
	Snapshot   orchestration.ProgressSnapshot
	Generation uint64
}

// ProgressDoneMsg is sent when the progress channel closes.
type ProgressDoneMsg struct {
	Generation uint64
}

// TableMsg carries the final sorted frequency table.
type TableMsg struct {
	Entries    []tally.Entry
	Generation uint64
}

// SummaryMsg carries the distribution summary.
type SummaryMsg struct {
	Summary    tally.Summary
	Generation uint64
}

// ChartMsg carries the final chart.
type ChartMsg struct {
	Spec       chart.Spec
	Generation uint64
}

// ErrorMsg reports a failed batch.
type ErrorMsg struct {
	Err        error
	Duration   time.Duration
	Generation uint64
}

// BatchCompleteMsg is the last message of a batch.
type BatchCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when a batch context is done.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}

// TickMsg drives periodic refreshes.
type TickMsg time.Time

// MemStatsMsg carries runtime memory statistics.
type MemStatsMsg struct {
	HeapAlloc    uint64
	Sys          uint64
	NumGC        uint32
	NumGoroutine int
}

// SysStatsMsg carries system-wide CPU and memory usage.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
	ProcRSS    uint64
}
