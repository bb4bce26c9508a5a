// Package config loads, normalizes, and validates linesdiff configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Thresholds left unset resolve to the
// default of whichever threshold mode is in effect when Thresholds is called,
// so a mode chosen on the command line still picks the matching default.
//
// Load failures carry services.ErrConfiguration so the CLI can map them to
// the configuration exit code.
package config
