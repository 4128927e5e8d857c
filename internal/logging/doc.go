// Package logging assembles structured slog loggers for moviely.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and exposes context helpers that tag lines with the project, action and
// request being served. NewNop gives tests and optional wiring a logger that
// never fails.
package logging
