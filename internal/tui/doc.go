// Package tui implements the interactive dashboard started with --tui. It
// runs the same batch pipeline as the console mode and receives its progress
// and results as bubbletea messages through the bridge types.
package tui
