// Package services defines shared utilities consumed by the archive pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and the archived URL
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (capture, read, transport, rejected publish, incomplete manifest) so the
//     orchestrator and HTTP surface can react uniformly.
package services
