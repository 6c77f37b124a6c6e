// Package main hosts the Permasnap CLI entrypoint and command graph.
//
// The Cobra-based command tree archives single pages from the terminal,
// serves the archive HTTP API, inspects local history, reports dependency
// health, and cleans up scratch directories left by interrupted captures.
// It centralizes configuration resolution and logger construction so
// subcommands only deal with presentation.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through dedicated commands or flags.
package main
