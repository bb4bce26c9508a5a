// Package plane models single-plane luma data: sample formats, whole-frame
// planes, one-sample-thick strips cut from them, and the mean-absolute-difference
// metric used to compare two strips.
//
// Sample width is a closed variant (8/10/12/14/16-bit integer or 32-bit float)
// resolved once per clip. MetricFor returns a comparison strategy bound to that
// format so the per-sample loops never branch on the sample kind.
package plane
