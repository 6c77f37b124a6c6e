// Package logging assembles structured slog loggers and formatting helpers used
// across Permasnap.
//
// It owns the console and JSON handlers, mirrors every record into a JSON log
// file when a log directory is configured, and exposes context-aware helpers so
// pipeline code can tag log lines with request IDs, stages, and the archived
// URL. The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
