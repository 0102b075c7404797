// Package ui holds the color themes shared by the console report, the text
// chart and the dashboard. Colors are ANSI escape codes for plain output and
// lipgloss colors for styled output.
package ui
