// Package history keeps a local SQLite ledger of published archives.
//
// Each successful archive appends one Entry carrying the manifest identifier,
// the page and screenshot identifiers, the source URL, and the capture
// timestamp. The ledger is informational: the archive pipeline logs and
// ignores failures to record. The schema is versioned; a mismatch is
// reported as ErrSchemaMismatch rather than migrated.
package history
