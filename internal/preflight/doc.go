// Package preflight provides readiness checks for the binaries and
// filesystem paths a scan depends on.
//
// These checks run in two contexts:
//   - The scan command calls RunAll before opening the clip, so a missing
//     decoder or an unwritable report directory fails fast with a
//     configuration error instead of after the first finding.
//   - The "linesdiff doctor" command renders every result as a table.
//
// Each check is gated by its config setting; disabled features are skipped.
package preflight
