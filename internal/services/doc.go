// Package services defines shared utilities consumed by the scan engine, the
// media adapters, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, frame indices, and source paths for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration, frame, report) with errors.Is and map them to
//     exit codes.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the tool.
package services
