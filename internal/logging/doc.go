// Package logging assembles structured slog loggers and formatting helpers used
// across linesdiff.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so scan code can tag log lines
// with the run id, source clip and frame number. A no-op logger is provided
// for tests and for library code that is used without a configured logger.
package logging
