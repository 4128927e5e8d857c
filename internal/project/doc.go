// Package project defines the canonical, immutable shape of a video project.
//
// A State owns its clips by value and every clip owns its effects by value, so
// a State can be handed across goroutines or persisted without aliasing. The
// package enforces structural invariants at construction time: resolution and
// frame-rate bounds, clip timing and layer bounds, volume range, unique clip
// ids, and the rule that media clips reference an existing, readable file.
// Mutation is never done in place; callers derive new values through the
// copy-on-write helpers (AppendClip, ReplaceClip, RemoveClip).
//
// Marshal and Decode implement the persisted document layout shared by every
// storage backend and template source.
package project
