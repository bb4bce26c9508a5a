// Package borderscan detects border-line artifacts: frames whose luma jumps
// abruptly between adjacent rows or columns near one of the four picture
// edges.
//
// The package is layered leaves-first. Scanner walks one edge inward and stops
// at the first strip pair whose normalized difference exceeds the edge
// threshold. Classifier runs the edges in the fixed order left, top, right,
// bottom and stops as soon as one edge produces a verdict. Filter is the
// per-frame entry point a frame-pull driver calls: it classifies the frame,
// tags it, and forwards findings to a report recorder.
//
// A Filter holds order-sensitive state and must be driven serially; GetFrame
// takes an instance-wide lock so concurrent callers are queued rather than
// interleaved.
package borderscan
