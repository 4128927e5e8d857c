package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"moviely/internal/composition"
	"moviely/internal/project"
	"moviely/internal/render"
	"moviely/internal/services"
	"moviely/internal/testsupport"
)

type fakeBackend struct {
	calls   int
	plan    composition.Plan
	opts    render.Options
	outPath string
	err     error
	write   bool
}

func (f *fakeBackend) Encode(_ context.Context, plan composition.Plan, outputPath string, opts render.Options) error {
	f.calls++
	f.plan = plan
	f.opts = opts
	f.outPath = outputPath
	if f.write {
		if err := os.WriteFile(outputPath, []byte("rendered"), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func textState(t *testing.T) project.State {
	t.Helper()
	state, err := project.New(project.Settings{
		Name: "render", Resolution: project.Resolution{Width: 1920, Height: 1080}, FPS: 30,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clip, _ := project.NewClip(project.ClipSpec{ID: "title", Kind: "text", Source: "Hello", Duration: 3}, nil)
	state, err = state.AppendClip(clip)
	if err != nil {
		t.Fatalf("AppendClip: %v", err)
	}
	return state
}

func TestRenderEmptyProject(t *testing.T) {
	backend := &fakeBackend{write: true}
	exec := render.NewExecutor(backend, nil, nil)
	state, _ := project.New(project.Settings{Name: "empty", Resolution: project.Resolution{Width: 640, Height: 480}, FPS: 24})
	_, err := exec.Render(context.Background(), state, filepath.Join(t.TempDir(), "out.mp4"), render.Options{})
	if !errors.Is(err, services.ErrEmptyProject) || !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected empty project render error, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatal("backend should not run for an empty project")
	}
}

func TestRenderMissingAsset(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, media, 16)
	state := textState(t)
	clip, err := project.NewClip(project.ClipSpec{ID: "v", Kind: "video", Source: media, Duration: 2}, nil)
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	state, _ = state.AppendClip(clip)
	if err := os.Remove(media); err != nil {
		t.Fatalf("remove: %v", err)
	}

	backend := &fakeBackend{write: true}
	_, err = render.NewExecutor(backend, nil, nil).Render(context.Background(), state, filepath.Join(dir, "out.mp4"), render.Options{})
	if !errors.Is(err, services.ErrMissingAsset) {
		t.Fatalf("expected missing asset, got %v", err)
	}
	if services.Kind(err) != "missing_asset" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
	if backend.calls != 0 {
		t.Fatal("backend should not run when an asset is missing")
	}
}

func TestRenderInvalidEffectFailsBeforeBackend(t *testing.T) {
	state := textState(t)
	clip, _ := state.ClipByID("title")
	effect, _ := project.NewEffect("sparkle", nil)
	state, _ = state.ReplaceClip(clip.WithEffect(effect))
	backend := &fakeBackend{write: true}
	_, err := render.NewExecutor(backend, nil, nil).Render(context.Background(), state, filepath.Join(t.TempDir(), "out.mp4"), render.Options{})
	if !errors.Is(err, services.ErrInvalidEffect) {
		t.Fatalf("expected invalid effect, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatal("backend should not run for an invalid effect")
	}
}

func TestRenderWritesAtomicallyAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "final.mp4")
	testsupport.WriteFile(t, out, 4)

	backend := &fakeBackend{write: true}
	result, err := render.NewExecutor(backend, nil, nil).Render(context.Background(), textState(t), out, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.OutputPath != out || result.Duration != 3 || result.ClipCount != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if backend.outPath != render.TempPath(out) || backend.outPath == out {
		t.Fatalf("backend wrote to %s, want temp sibling", backend.outPath)
	}
	if backend.opts != render.DefaultOptions() {
		t.Fatalf("expected default options, got %+v", backend.opts)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "rendered" {
		t.Fatalf("output not replaced: %q %v", data, err)
	}
	if _, err := os.Stat(render.TempPath(out)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestRenderBackendFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final.mp4")
	backend := &fakeBackend{write: true, err: errors.New("encoder exploded")}
	_, err := render.NewExecutor(backend, nil, nil).Render(context.Background(), textState(t), out, render.Options{})
	if !errors.Is(err, services.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}
	for _, path := range []string{out, render.TempPath(out)} {
		if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
			t.Fatalf("expected %s to be absent, got %v", path, statErr)
		}
	}
}

func TestRenderBackendWithoutOutput(t *testing.T) {
	backend := &fakeBackend{}
	_, err := render.NewExecutor(backend, nil, nil).Render(context.Background(), textState(t), filepath.Join(t.TempDir(), "o.mp4"), render.Options{})
	if !errors.Is(err, services.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}
}

func TestTempPathKeepsExtension(t *testing.T) {
	if got := render.TempPath("/out/video.final.mp4"); got != "/out/.render-video.final.tmp.mp4" {
		t.Fatalf("TempPath = %s", got)
	}
}
