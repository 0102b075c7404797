// Package orchestration runs an experiment batch and turns its outputs into a
// report. It decouples the trial loop from presentation via the
// ProgressReporter, ResultPresenter and chart.Renderer interfaces.
package orchestration
