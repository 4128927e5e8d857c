package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"moviely/internal/project"
)

// fixtureExtensions maps clip kinds to the extension their fixtures carry.
var fixtureExtensions = map[project.Kind]string{
	project.KindVideo: ".mp4",
	project.KindAudio: ".mp3",
	project.KindImage: ".png",
}

// WriteFile writes size filler bytes to path, creating parent directories.
// A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MediaFixture writes a placeholder source file for kind under dir and
// returns its path. The content is not decodable media; it only satisfies
// asset existence checks.
func MediaFixture(t testing.TB, dir string, kind project.Kind, name string) string {
	t.Helper()

	ext, ok := fixtureExtensions[kind]
	if !ok {
		t.Fatalf("no media fixture for clip kind %q", kind)
	}
	path := filepath.Join(dir, name+ext)
	WriteFile(t, path, 64)
	return path
}
