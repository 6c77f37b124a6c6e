// Package server exposes the archive pipeline over HTTP.
//
// POST /api/archive accepts {"url", "accessToken": {"id_token"}, "address"}
// and answers with {"status": "success", "data": {...}} or
// {"status": "error", "message": ...}. Requests are rate limited per client
// address and bounded by a configurable deadline. Run holds a flock-based
// lock in the data directory so only one server runs per installation.
package server
