package testsupport

import (
	"context"
	"testing"

	"moviely/internal/config"
	"moviely/internal/project"
	"moviely/internal/store"
)

// MustOpenStore opens the configured project store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// NewProject builds a project with the given settings or fails the test.
func NewProject(t testing.TB, name string, width, height int) project.State {
	t.Helper()

	state, err := project.New(project.Settings{
		Name:       name,
		Resolution: project.Resolution{Width: width, Height: height},
		FPS:        project.DefaultFPS,
	})
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}
	return state
}

// AddClip appends a clip built from spec or fails the test.
func AddClip(t testing.TB, state project.State, spec project.ClipSpec) project.State {
	t.Helper()

	clip, err := project.NewClip(spec, nil)
	if err != nil {
		t.Fatalf("project.NewClip: %v", err)
	}
	next, err := state.AppendClip(clip)
	if err != nil {
		t.Fatalf("AppendClip: %v", err)
	}
	return next
}
