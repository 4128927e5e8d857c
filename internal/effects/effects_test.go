package effects_test

import (
	"errors"
	"reflect"
	"testing"

	"moviely/internal/effects"
	"moviely/internal/project"
	"moviely/internal/services"
)

func mustEffect(t *testing.T, typ string, params map[string]any) project.Effect {
	t.Helper()
	e, err := project.NewEffect(typ, params)
	if err != nil {
		t.Fatalf("NewEffect: %v", err)
	}
	return e
}

func TestResolveFade(t *testing.T) {
	target := effects.Target{Duration: 3, HasAudio: true, HasPicture: true}
	stage, err := effects.Resolve(mustEffect(t, "fade", map[string]any{"fade_in": 0.5, "fade_out": 1}), target)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantVideo := []string{"fade=t=in:st=0:d=0.5:alpha=1", "fade=t=out:st=2:d=1:alpha=1"}
	if !reflect.DeepEqual(stage.Video, wantVideo) {
		t.Fatalf("video filters = %v, want %v", stage.Video, wantVideo)
	}
	wantAudio := []string{"afade=t=in:st=0:d=0.5", "afade=t=out:st=2:d=1"}
	if !reflect.DeepEqual(stage.Audio, wantAudio) {
		t.Fatalf("audio filters = %v, want %v", stage.Audio, wantAudio)
	}
}

func TestResolveFadeTextOnlyTouchesVideo(t *testing.T) {
	stage, err := effects.Resolve(mustEffect(t, "fade", map[string]any{"fade_in": 0.5}), effects.Target{Duration: 3, HasPicture: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(stage.Audio) != 0 || len(stage.Video) != 1 {
		t.Fatalf("unexpected stage %+v", stage)
	}
}

func TestResolveCropAndResize(t *testing.T) {
	target := effects.Target{Duration: 5, HasPicture: true}
	crop, err := effects.Resolve(mustEffect(t, "crop", map[string]any{"x": 656, "y": 0, "width": 607, "height": 1080}), target)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if crop.Video[0] != "crop=607:1080:656:0" || crop.Sized {
		t.Fatalf("unexpected crop stage %+v", crop)
	}
	resize, err := effects.Resolve(mustEffect(t, "resize", map[string]any{"width": 640}), target)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if resize.Video[0] != "scale=640:-2" || !resize.Sized {
		t.Fatalf("unexpected resize stage %+v", resize)
	}
	pipeline := effects.Pipeline{Stages: []effects.Stage{crop, resize}}
	if !pipeline.Sized() || len(pipeline.VideoFilters()) != 2 {
		t.Fatalf("unexpected pipeline %+v", pipeline)
	}
}

func TestResolveRejectsUnusableEffects(t *testing.T) {
	picture := effects.Target{ClipID: "c1", Duration: 2, HasPicture: true}
	tests := []struct {
		name   string
		effect project.Effect
		target effects.Target
	}{
		{"unknown type", project.Effect{Type: "sparkle"}, picture},
		{"string parameter", mustEffect(t, "fade", map[string]any{"fade_in": "slow"}), picture},
		{"negative fade", mustEffect(t, "fade", map[string]any{"fade_out": -1}), picture},
		{"fade longer than clip", mustEffect(t, "fade", map[string]any{"fade_in": 1.5, "fade_out": 1}), picture},
		{"crop without size", mustEffect(t, "crop", map[string]any{"x": 1}), picture},
		{"crop zero width", mustEffect(t, "crop", map[string]any{"width": 0, "height": 10}), picture},
		{"crop audio clip", mustEffect(t, "crop", map[string]any{"width": 10, "height": 10}), effects.Target{Duration: 2, HasAudio: true}},
		{"resize without dimensions", mustEffect(t, "resize", nil), picture},
		{"unknown parameter", mustEffect(t, "resize", map[string]any{"width": 10, "depth": 3}), picture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := effects.Resolve(tt.effect, tt.target)
			if !errors.Is(err, services.ErrInvalidEffect) || !errors.Is(err, services.ErrRender) {
				t.Fatalf("expected invalid effect render error, got %v", err)
			}
		})
	}
}

func TestResolveAllStopsAtFirstFailure(t *testing.T) {
	list := []project.Effect{
		mustEffect(t, "fade", map[string]any{"fade_in": 0.2}),
		{Type: "sparkle"},
	}
	if _, err := effects.ResolveAll(list, effects.Target{Duration: 2, HasPicture: true}); !errors.Is(err, services.ErrInvalidEffect) {
		t.Fatalf("expected invalid effect, got %v", err)
	}
	if got := effects.Types(); !reflect.DeepEqual(got, []string{"crop", "fade", "resize"}) {
		t.Fatalf("Types() = %v", got)
	}
}
