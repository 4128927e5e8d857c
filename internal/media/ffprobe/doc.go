// Package ffprobe wraps ffprobe's JSON output.
//
// Inspect runs the binary and decodes streams and container metadata; Prober
// answers the two questions the editor asks about a source file: its frame
// size and whether it carries audio.
package ffprobe
