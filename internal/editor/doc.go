// Package editor is the facade the CLI and HTTP API drive.
//
// A Manager holds an optional current project for library callers and also
// works directly against stored projects. Writers to one stored project are
// serialised by an in-process mutex and, when a lock directory is
// configured, by a per-project file lock shared with other processes.
package editor
