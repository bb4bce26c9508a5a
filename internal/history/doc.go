// Package history persists scan runs and their findings in SQLite.
//
// Each run gets a UUID, a row in runs with its settings and outcome, and one
// row per flagged frame in findings. The store mirrors the report file but
// survives across runs, so earlier scans can be listed and compared without
// keeping their report files around.
package history
