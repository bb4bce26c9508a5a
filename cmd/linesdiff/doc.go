// Package main hosts the linesdiff CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration, logging, probing,
// decoding and the border-line filter together for the "scan" command, and
// exposes configuration scaffolding, run history and an environment check.
// Exit codes follow services.ExitCode: 2 for configuration problems, 3 when
// a frame cannot be decoded and 4 when the report could not be written.
//
// Keep this package lean: behaviour lives in the internal packages and is
// only surfaced here through commands and flags.
package main
