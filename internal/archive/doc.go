// Package archive runs the end-to-end pipeline for one web page: capture the
// page into a scratch directory, publish the page and screenshot in parallel,
// publish a manifest linking both, and remove the scratch directory.
//
// The Archiver owns no global state. Each call gets a request id that is
// threaded through the context so every log line of one archive can be
// correlated. NewFromConfig wires the production renderer, HTTP transport,
// and optional history ledger from a loaded configuration.
package archive
