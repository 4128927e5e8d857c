// Package main hosts the moviely CLI entrypoint and command graph.
//
// The Cobra command tree edits stored projects through the editor manager:
// creating projects from settings or templates, applying registered
// operations, planning and rendering, stock media search, the HTTP API server
// and environment diagnostics. Configuration and logging are resolved once
// per invocation by the shared command context.
package main
