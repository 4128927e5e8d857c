package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moviely/internal/composition"
	"moviely/internal/project"
	"moviely/internal/services"
	"moviely/internal/testsupport"
)

func intPtr(v int) *int { return &v }

func scenarioState(t *testing.T, video string) project.State {
	t.Helper()
	state, err := project.New(project.Settings{
		Name: "scenario", Resolution: project.Resolution{Width: 1920, Height: 1080}, FPS: 30,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	crop, _ := project.NewEffect("crop", map[string]any{"x": 656, "y": 0, "width": 607, "height": 1080})
	clip, err := project.NewClip(project.ClipSpec{ID: "bg", Kind: "video", Source: video, Duration: 5, Effects: []project.Effect{crop}}, nil)
	if err != nil {
		t.Fatalf("NewClip video: %v", err)
	}
	if state, err = state.AppendClip(clip); err != nil {
		t.Fatalf("append: %v", err)
	}
	fade, _ := project.NewEffect("fade", map[string]any{"fade_in": 0.5, "fade_out": 0.5})
	text, _ := project.NewClip(project.ClipSpec{ID: "title", Kind: "text", Source: "Hello: World", Duration: 3, Start: 1, TrackLayer: intPtr(2), Effects: []project.Effect{fade}}, nil)
	if state, err = state.AppendClip(text); err != nil {
		t.Fatalf("append: %v", err)
	}
	return state
}

func TestFFmpegBuildsFilterGraph(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "bg.mp4")
	testsupport.WriteFile(t, video, 16)
	plan, err := composition.Build(scenarioState(t, video))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var gotName string
	var gotArgs []string
	backend := NewFFmpeg("", "", func(context.Context, string) (bool, error) { return true, nil }, nil)
	backend.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	})
	out := filepath.Join(dir, "out.mp4")
	if err := backend.Encode(context.Background(), plan, out, Options{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if gotName != "ffmpeg" || gotArgs[len(gotArgs)-1] != out {
		t.Fatalf("unexpected invocation %s %v", gotName, gotArgs)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{
		"color=c=0x000000:s=1920x1080:r=30:d=5",
		"-i " + video,
		"[1:v]trim=duration=5,setpts=PTS-STARTPTS,format=yuva420p,crop=607:1080:656:0,scale=1920:1080:force_original_aspect_ratio=increase,crop=1920:1080",
		"fontcolor=white",
		"fontsize=70",
		"fade=t=in:st=0:d=0.5:alpha=1",
		"fade=t=out:st=2.5:d=0.5:alpha=1",
		"[0:v][v0]overlay=x=(W-w)/2:y=(H-h)/2:eof_action=pass:enable='between(t,0,5)'[o0]",
		"[o0][v1]overlay=x=(W-w)/2:y=(H-h)/2:eof_action=pass:enable='between(t,1,4)'[o1]",
		"[o1]format=yuv420p[vout]",
		"[1:a]atrim=duration=5,asetpts=PTS-STARTPTS,volume=1,adelay=delays=0:all=1[a0]",
		"[a0]anull[aout]",
		"-c:v libx264 -preset medium",
		"-c:a aac",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args:\n%s", fragment, joined)
		}
	}
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".render-work-") {
			t.Fatalf("work directory %s not removed", entry.Name())
		}
	}
}

func TestFFmpegTextColourFollowsBackground(t *testing.T) {
	state, _ := project.New(project.Settings{
		Name: "light", Resolution: project.Resolution{Width: 1280, Height: 720}, FPS: 25,
		Background: project.Color{R: 240, G: 240, B: 240},
	})
	clip, _ := project.NewClip(project.ClipSpec{Kind: "text", Source: "Hi", Duration: 2}, nil)
	state, _ = state.AppendClip(clip)
	plan, _ := composition.Build(state)

	var joined string
	backend := NewFFmpeg("ffmpeg", "/fonts/Sans.ttf", nil, nil)
	backend.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		joined = strings.Join(args, " ")
		return nil
	})
	if err := backend.Encode(context.Background(), plan, filepath.Join(t.TempDir(), "o.mp4"), DefaultOptions()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(joined, "fontcolor=black") || !strings.Contains(joined, `fontfile=/fonts/Sans.ttf`) {
		t.Fatalf("unexpected drawtext in %s", joined)
	}
	if !strings.Contains(joined, "-an") {
		t.Fatalf("text-only render should disable audio: %s", joined)
	}
}

func TestFFmpegMixesAudioAndSkipsSilentVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "silent.mp4")
	music := filepath.Join(dir, "music.mp3")
	voice := filepath.Join(dir, "voice.mp3")
	for _, p := range []string{video, music, voice} {
		testsupport.WriteFile(t, p, 8)
	}
	state, _ := project.New(project.Settings{Name: "mix", Resolution: project.Resolution{Width: 640, Height: 360}, FPS: 24})
	for _, spec := range []project.ClipSpec{
		{ID: "v", Kind: "video", Source: video, Duration: 4},
		{ID: "m", Kind: "audio", Source: music, Duration: 4},
		{ID: "n", Kind: "audio", Source: voice, Duration: 2, Start: 1.5},
	} {
		clip, err := project.NewClip(spec, nil)
		if err != nil {
			t.Fatalf("NewClip: %v", err)
		}
		state, _ = state.AppendClip(clip)
	}
	plan, _ := composition.Build(state)

	var joined string
	backend := NewFFmpeg("", "", func(_ context.Context, path string) (bool, error) { return path != video, nil }, nil)
	backend.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		joined = strings.Join(args, " ")
		return nil
	})
	if err := backend.Encode(context.Background(), plan, filepath.Join(dir, "o.mp4"), DefaultOptions()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(joined, "[1:a]") {
		t.Fatalf("silent video should not contribute audio: %s", joined)
	}
	for _, fragment := range []string{"adelay=delays=1500:all=1", "amix=inputs=2:duration=longest:normalize=0[aout]"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %s", fragment, joined)
		}
	}
}

func TestFFmpegFailureThroughExecutor(t *testing.T) {
	dir := t.TempDir()
	clip, _ := project.NewClip(project.ClipSpec{Kind: "text", Source: "x", Duration: 1}, nil)
	state, _ := project.New(project.Settings{Name: "f", Resolution: project.Resolution{Width: 320, Height: 240}, FPS: 24})
	state, _ = state.AppendClip(clip)

	backend := NewFFmpeg("", "", nil, nil)
	backend.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1: Invalid argument")
	})
	_, err := NewExecutor(backend, nil, nil).Render(context.Background(), state, filepath.Join(dir, "o.mp4"), Options{})
	if !errors.Is(err, services.ErrBackendFailure) || !strings.Contains(err.Error(), "Invalid argument") {
		t.Fatalf("expected backend failure with diagnostics, got %v", err)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	if got := escapeFilterValue(`C:\a'b,c`); got != `C\:\\a\'b\,c` {
		t.Fatalf("escapeFilterValue = %s", got)
	}
}
