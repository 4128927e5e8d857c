package project_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"moviely/internal/project"
	"moviely/internal/services"
	"moviely/internal/testsupport"
)

func TestMarshalDecodeRoundTrip(t *testing.T) {
	media := filepath.Join(t.TempDir(), "intro.mp4")
	testsupport.WriteFile(t, media, 16)

	settings := baseSettings()
	settings.Background = project.Color{R: 10, G: 20, B: 30}
	state, _ := project.New(settings)
	video, err := project.NewClip(project.ClipSpec{
		ID: "clip_video", Kind: "video", Source: media, Duration: 4.5, Start: 0.25,
		TrackLayer: intPtr(2), Volume: floatPtr(0.8),
		Effects: []project.Effect{{Type: "fade", Parameters: map[string]any{"fade_in": 1}}},
	}, nil)
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	text, _ := project.NewClip(project.ClipSpec{ID: "clip_text", Kind: "text", Source: "Hello", Duration: 3}, nil)
	state, _ = state.AppendClip(video)
	state, _ = state.AppendClip(text)

	data, err := project.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, fragment := range []string{`"resolution": [`, `"background_color": [`, `"track_layer": 2`} {
		if !strings.Contains(string(data), fragment) {
			t.Fatalf("expected %q in persisted layout:\n%s", fragment, data)
		}
	}
	decoded, err := project.Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Equal(state) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", state, decoded)
	}
}

func TestDecodeAppliesDefaults(t *testing.T) {
	doc := `{"name":"minimal","resolution":[1280,720],"clips":[{"id":"t1","type":"text","source":"Hi","duration":2}]}`
	state, err := project.Decode([]byte(doc), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if state.FPS != 30 || state.Background != (project.Color{}) {
		t.Fatalf("unexpected project defaults: fps=%d bg=%v", state.FPS, state.Background)
	}
	clip := state.Clips[0]
	if clip.Start != 0 || clip.TrackLayer != 1 || clip.Volume != 1 || len(clip.Effects) != 0 {
		t.Fatalf("unexpected clip defaults: %+v", clip)
	}
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not json", `{`, services.ErrValidation},
		{"missing resolution", `{"name":"x"}`, services.ErrValidation},
		{"short resolution", `{"name":"x","resolution":[1920]}`, services.ErrValidation},
		{"string fps", `{"name":"x","resolution":[1920,1080],"fps":"30"}`, services.ErrValidation},
		{"fps out of range", `{"name":"x","resolution":[1920,1080],"fps":500}`, services.ErrValidation},
		{"clip without duration", `{"name":"x","resolution":[1920,1080],"clips":[{"type":"text","source":"a"}]}`, services.ErrValidation},
		{"duplicate ids", `{"name":"x","resolution":[1920,1080],"clips":[
			{"id":"a","type":"text","source":"a","duration":1},
			{"id":"a","type":"text","source":"b","duration":1}]}`, services.ErrValidation},
		{"missing media", `{"name":"x","resolution":[1920,1080],"clips":[{"type":"video","source":"/nonexistent/a.mp4","duration":1}]}`, services.ErrAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := project.Decode([]byte(tt.doc), nil); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeUsesInjectedAssetChecker(t *testing.T) {
	doc := `{"name":"x","resolution":[1920,1080],"clips":[{"type":"video","source":"virtual.mp4","duration":1}]}`
	var checked []string
	checker := project.AssetCheckerFunc(func(path string) error {
		checked = append(checked, path)
		return nil
	})
	if _, err := project.Decode([]byte(doc), checker); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(checked) != 1 || checked[0] != "virtual.mp4" {
		t.Fatalf("unexpected asset checks: %v", checked)
	}
}
