package ffprobe

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45", Size: "1000"},
	}
	if stream, ok := result.VideoStream(); !ok || stream.Width != 1920 {
		t.Fatalf("unexpected video stream %+v", stream)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestProberDimensionsAndCache(t *testing.T) {
	calls := 0
	runner := func(_ context.Context, binary string, args ...string) ([]byte, error) {
		calls++
		if binary != "ffprobe" || args[len(args)-1] != "clip.mp4" {
			t.Fatalf("unexpected invocation %s %v", binary, args)
		}
		return []byte(`{"streams":[{"codec_type":"video","width":1280,"height":720},{"codec_type":"audio"}],"format":{"duration":"4.0"}}`), nil
	}
	prober := NewProber("").WithRunner(runner)
	w, h, err := prober.Dimensions(context.Background(), "clip.mp4")
	if err != nil || w != 1280 || h != 720 {
		t.Fatalf("Dimensions = %d %d %v", w, h, err)
	}
	hasAudio, err := prober.HasAudio(context.Background(), "clip.mp4")
	if err != nil || !hasAudio {
		t.Fatalf("HasAudio = %v %v", hasAudio, err)
	}
	if calls != 1 {
		t.Fatalf("expected cached result, ffprobe ran %d times", calls)
	}
}

func TestProberErrors(t *testing.T) {
	audioOnly := NewProber("ffprobe").WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"streams":[{"codec_type":"audio"}]}`), nil
	})
	if _, _, err := audioOnly.Dimensions(context.Background(), "a.mp3"); err == nil {
		t.Fatal("expected error for file without video stream")
	}

	failing := NewProber("ffprobe").WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1: invalid data")
	})
	_, err := failing.HasAudio(context.Background(), "broken.mp4")
	if err == nil || !strings.Contains(err.Error(), "invalid data") {
		t.Fatalf("expected runner error, got %v", err)
	}
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
