// Package ui styles CLI output with lipgloss.
//
// The [Palette] names the few styles the commands use (titles, success, errors, warnings, hints).
// [Timeline] draws a cluster's total and core ranges as a one-line bar over the track's time axis,
// and [RenderCluster] combines it with the cluster label and timestamps.
package ui
