// Package scan drives a border-line filter across a whole clip.
//
// Run pulls frames 0..N-1 in order through the filter (one call at a time,
// as the filter requires), keeps per-edge tallies of the findings, logs
// sampled progress and, when a history store is attached, persists the run
// and each finding. Cancellation is honoured between frames.
package scan
