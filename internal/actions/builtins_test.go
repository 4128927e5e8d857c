package actions_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"moviely/internal/actions"
	"moviely/internal/project"
	"moviely/internal/services"
	"moviely/internal/testsupport"
)

type fakeProber struct {
	width, height int
	err           error
	calls         []string
}

func (f *fakeProber) Dimensions(_ context.Context, path string) (int, int, error) {
	f.calls = append(f.calls, path)
	return f.width, f.height, f.err
}

func apply(t *testing.T, r *actions.Registry, state project.State, name string, args actions.Args) project.State {
	t.Helper()
	next, err := r.Execute(context.Background(), name, state, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return next
}

func TestAddClipDefaultsAndPurity(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	state := emptyState(t)
	next := apply(t, r, state, "add_clip", actions.Args{
		"clip_type": "text", "source": "Hello", "duration": 3.0,
	})
	if state.ClipCount() != 0 {
		t.Fatal("add_clip mutated its input")
	}
	clip := next.Clips[0]
	if clip.Start != 0 || clip.TrackLayer != 1 || clip.Volume != 1 {
		t.Fatalf("unexpected defaults %+v", clip)
	}
}

func TestAddClipValidation(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	missing := filepath.Join(t.TempDir(), "missing.mp4")
	tests := []struct {
		name string
		args actions.Args
		want error
	}{
		{"missing type", actions.Args{"source": "x", "duration": 1.0}, services.ErrValidation},
		{"string duration", actions.Args{"clip_type": "text", "source": "x", "duration": "long"}, services.ErrValidation},
		{"fractional layer", actions.Args{"clip_type": "text", "source": "x", "duration": 1.0, "track_layer": 1.5}, services.ErrValidation},
		{"negative duration before file check", actions.Args{"clip_type": "video", "source": missing, "duration": -1.0}, services.ErrValidation},
		{"missing file", actions.Args{"clip_type": "video", "source": missing, "duration": 2.0}, services.ErrAsset},
		{"bad effects", actions.Args{"clip_type": "text", "source": "x", "duration": 1.0, "effects": "fade"}, services.ErrValidation},
		{"volume on text", actions.Args{"clip_type": "text", "source": "x", "duration": 1.0, "volume": 1.7}, services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), "add_clip", emptyState(t), tt.args); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAddClipDuplicateID(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	args := actions.Args{"clip_type": "text", "source": "a", "duration": 1.0, "clip_id": "title"}
	state := apply(t, r, emptyState(t), "add_clip", args)
	if _, err := r.Execute(context.Background(), "add_clip", state, args); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected duplicate id validation error, got %v", err)
	}
}

func TestTrimRemoveAndMove(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "text", "source": "a", "duration": 4.0, "clip_id": "a",
	})

	trimmed := apply(t, r, state, "trim_clip", actions.Args{"clip_id": "a", "new_duration": 2.0, "new_start": 1.0})
	if c := trimmed.Clips[0]; c.Duration != 2 || c.Start != 1 {
		t.Fatalf("trim not applied: %+v", c)
	}
	if c := state.Clips[0]; c.Duration != 4 || c.Start != 0 {
		t.Fatalf("trim mutated input: %+v", c)
	}
	for _, args := range []actions.Args{
		{"clip_id": "a", "new_duration": 0.0},
		{"clip_id": "a", "new_start": -1.0},
	} {
		if _, err := r.Execute(context.Background(), "trim_clip", state, args); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %v, got %v", args, err)
		}
	}
	if _, err := r.Execute(context.Background(), "trim_clip", state, actions.Args{"clip_id": "zz"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	moved := apply(t, r, state, "move_clip", actions.Args{"clip_id": "a", "new_layer": 3.0, "new_start": 5.0})
	if c := moved.Clips[0]; c.TrackLayer != 3 || c.Start != 5 {
		t.Fatalf("move not applied: %+v", c)
	}
	if _, err := r.Execute(context.Background(), "move_clip", state, actions.Args{"clip_id": "a"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error without targets, got %v", err)
	}
	if _, err := r.Execute(context.Background(), "move_clip", state, actions.Args{"clip_id": "a", "new_layer": 0.0}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for layer 0, got %v", err)
	}

	removed := apply(t, r, state, "remove_clip", actions.Args{"clip_id": "a"})
	if removed.ClipCount() != 0 {
		t.Fatal("remove_clip left the clip in place")
	}
	if _, err := r.Execute(context.Background(), "remove_clip", removed, actions.Args{"clip_id": "a"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyEffectAcceptsAnyParameters(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "text", "source": "a", "duration": 4.0, "clip_id": "a",
	})
	next := apply(t, r, state, "apply_effect", actions.Args{
		"clip_id": "a", "effect_type": "sparkle", "parameters": map[string]any{"amount": "lots"},
	})
	if got := next.Clips[0].Effects; len(got) != 1 || got[0].Type != "sparkle" {
		t.Fatalf("unexpected effects %+v", got)
	}
	next = apply(t, r, next, "apply_effect", actions.Args{"clip_id": "a", "effect_type": "fade"})
	if got := next.Clips[0].Effects; len(got) != 2 || got[1].Parameters == nil {
		t.Fatalf("expected empty parameter map, got %+v", got)
	}
	if _, err := r.Execute(context.Background(), "apply_effect", state, actions.Args{"clip_id": "x", "effect_type": "fade"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetVolume(t *testing.T) {
	audio := testsupport.MediaFixture(t, t.TempDir(), project.KindAudio, "music")

	r := actions.NewDefaultRegistry(actions.Dependencies{})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "audio", "source": audio, "duration": 10.0, "clip_id": "music",
	})
	state = apply(t, r, state, "add_clip", actions.Args{
		"clip_type": "text", "source": "title", "duration": 2.0, "clip_id": "title",
	})

	next := apply(t, r, state, "set_volume", actions.Args{"clip_id": "music", "volume": 0.5})
	if got := next.Clips[0].Volume; got != 0.5 {
		t.Fatalf("volume = %v", got)
	}
	for _, tt := range []struct {
		args actions.Args
		want error
	}{
		{actions.Args{"clip_id": "music", "volume": 2.01}, services.ErrValidation},
		{actions.Args{"clip_id": "music", "volume": -0.5}, services.ErrValidation},
		{actions.Args{"clip_id": "title", "volume": 1.0}, services.ErrValidation},
		{actions.Args{"clip_id": "ghost", "volume": 1.0}, services.ErrNotFound},
	} {
		if _, err := r.Execute(context.Background(), "set_volume", state, tt.args); !errors.Is(err, tt.want) {
			t.Fatalf("set_volume %v: expected %v, got %v", tt.args, tt.want, err)
		}
	}
}

func TestCropVerticalUsesProbedSize(t *testing.T) {
	video := testsupport.MediaFixture(t, t.TempDir(), project.KindVideo, "wide")
	prober := &fakeProber{width: 1920, height: 1080}

	r := actions.NewDefaultRegistry(actions.Dependencies{Prober: prober})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "video", "source": video, "duration": 5.0, "clip_id": "v",
	})
	next := apply(t, r, state, "crop_vertical", actions.Args{"clip_id": "v"})
	effects := next.Clips[0].Effects
	if len(effects) != 1 || effects[0].Type != "crop" {
		t.Fatalf("unexpected effects %+v", effects)
	}
	want := map[string]any{"x": 656.0, "y": 0.0, "width": 607.0, "height": 1080.0}
	for key, value := range want {
		if effects[0].Parameters[key] != value {
			t.Fatalf("crop %s = %v, want %v", key, effects[0].Parameters[key], value)
		}
	}
	if len(prober.calls) != 1 || prober.calls[0] != video {
		t.Fatalf("expected one probe of %s, got %v", video, prober.calls)
	}
}

func TestCropVerticalTextUsesProjectResolution(t *testing.T) {
	prober := &fakeProber{err: errors.New("should not be called")}
	r := actions.NewDefaultRegistry(actions.Dependencies{Prober: prober})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "text", "source": "Hi", "duration": 5.0, "clip_id": "t",
	})
	next := apply(t, r, state, "crop_vertical", actions.Args{"clip_id": "t", "target_aspect": "1:1"})
	params := next.Clips[0].Effects[0].Parameters
	if params["width"] != 1080.0 || params["x"] != 420.0 {
		t.Fatalf("unexpected square crop %v", params)
	}
	if len(prober.calls) != 0 {
		t.Fatalf("text clips must not be probed, got %v", prober.calls)
	}
}

func TestCropVerticalRejectsMalformedAspect(t *testing.T) {
	r := actions.NewDefaultRegistry(actions.Dependencies{})
	state := apply(t, r, emptyState(t), "add_clip", actions.Args{
		"clip_type": "text", "source": "Hi", "duration": 5.0, "clip_id": "t",
	})
	for _, aspect := range []string{"916", "9:", "0:16", "a:b", "-9:16", "1.5:2", "+9:16", "1e1:16", "9:16:1"} {
		_, err := r.Execute(context.Background(), "crop_vertical", state, actions.Args{"clip_id": "t", "target_aspect": aspect})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("aspect %q: expected validation error, got %v", aspect, err)
		}
	}
	if _, err := r.Execute(context.Background(), "crop_vertical", state, actions.Args{"clip_id": "nope"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseAspectAcceptsIntegerRatios(t *testing.T) {
	w, h, err := actions.ParseAspect(" 4 : 5 ")
	if err != nil || w != 4 || h != 5 {
		t.Fatalf("ParseAspect = %v, %v, %v", w, h, err)
	}
}

func TestCenteredCropTallSource(t *testing.T) {
	window, err := actions.CenteredCrop(1080, 1920, 1, 1)
	if err != nil {
		t.Fatalf("CenteredCrop: %v", err)
	}
	if window != (actions.CropWindow{X: 0, Y: 420, Width: 1080, Height: 1080}) {
		t.Fatalf("unexpected window %+v", window)
	}
}
