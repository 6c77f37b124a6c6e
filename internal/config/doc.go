// Package config loads, normalizes, and validates Permasnap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BROWSERLESS_API_KEY and OTHENT_API_ID. The Config type centralizes every knob
// the CLI and HTTP server need, so scratch directories, renderer options, and
// upload credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
