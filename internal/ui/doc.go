// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives a single migration run end to end:
//  1. [RunningView] : Monitor real-time progress with a spinner, a progress bar and a rolling track feed
//  2. [ResultView] : Display the final report summary and the unmatched track listing
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the pipeline Engine, providing
// non-blocking status reporting during the run.
package ui
