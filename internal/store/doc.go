// Package store persists project states.
//
// Four backends share the Store interface: an in-process memory map, a
// directory of JSON documents, a SQLite table and Redis keys. Every backend
// stores the persisted project document produced by project.Marshal, so a
// project saved by one backend can be loaded by any other after export.
//
// Writers to one project are serialised with Lock, an advisory file lock
// held per project id.
package store
