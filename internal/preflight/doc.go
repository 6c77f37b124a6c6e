// Package preflight provides readiness checks for the filesystem paths and
// external services Permasnap depends on.
//
// The CLI "permasnap status" command runs RunAll and CheckSystemDeps to
// display health; "permasnap serve" runs them once at startup and logs
// failures. Redis is only checked when a redis address is configured.
package preflight
