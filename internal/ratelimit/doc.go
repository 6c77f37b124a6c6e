// Package ratelimit provides fixed-window request limiting for the HTTP
// surface. The memory limiter serves a single process; the redis limiter
// shares counters between processes through an atomic script.
package ratelimit
