// Package services defines shared utilities consumed by the batch converter
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and input file names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal versus per-file outcomes.
//   - Thin abstractions that make command execution against external tools
//     testable.
package services
