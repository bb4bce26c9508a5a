// Package report accumulates border-line findings and persists them as a
// plain-text index of flagged frames.
//
// A Recorder runs in one of two modes fixed at construction. Append mode
// writes each new finding as soon as its frame is classified, so the file
// survives an interrupted run. Batch mode keeps findings in memory and
// rewrites the whole file once, when the clip's final frame is classified.
// Every write opens the file, holds an advisory lock next to it, and closes it
// again.
package report
