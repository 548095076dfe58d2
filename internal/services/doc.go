// Package services defines shared utilities consumed by the audit pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp audit IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the pipeline and
//     its callers branch on failure kind instead of raw transport errors.
//   - UserMessage, which turns a fatal failure into the one sentence a caller
//     shows to the person who started the audit.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across the pipeline.
package services
