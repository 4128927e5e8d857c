// Package services defines shared utilities consumed by the editing core and
// its I/O surfaces.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so every failure carries a
//     stable kind (validation, not found, asset, unknown action, render) that
//     the CLI and HTTP layers can classify without string matching.
//   - Context helpers that stamp project names, operation names, and
//     correlation identifiers for logging.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform.
package services
