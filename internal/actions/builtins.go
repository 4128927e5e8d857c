package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"moviely/internal/project"
	"moviely/internal/services"
)

// MediaProber reports the intrinsic frame size of a media file.
type MediaProber interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// Dependencies are the collaborators used by the built-in operations.
type Dependencies struct {
	Assets project.AssetChecker
	Prober MediaProber
	Logger *slog.Logger
}

// DefaultAspect is the crop_vertical target when none is given.
const DefaultAspect = "9:16"

// NewDefaultRegistry returns a registry holding every built-in operation.
func NewDefaultRegistry(deps Dependencies) *Registry {
	r := NewRegistry(deps.Logger)
	RegisterBuiltins(r, deps)
	return r
}

// RegisterBuiltins installs the built-in operations on r.
func RegisterBuiltins(r *Registry, deps Dependencies) {
	b := builtins{deps: deps}
	r.RegisterOperation(Operation{
		Name:    "add_clip",
		Summary: "Add a video, audio, image or text clip to the timeline",
		Params: []Param{
			{Name: "clip_type", Type: "string", Required: true, Description: "video, audio, image or text"},
			{Name: "source", Type: "string", Required: true, Description: "media path or literal text"},
			{Name: "duration", Type: "number", Required: true, Description: "seconds, > 0"},
			{Name: "start", Type: "number", Default: "0", Description: "timeline position in seconds"},
			{Name: "track_layer", Type: "integer", Default: "1", Description: "higher layers draw on top"},
			{Name: "clip_id", Type: "string", Description: "explicit id; generated when omitted"},
			{Name: "volume", Type: "number", Default: "1.0", Description: "0.0 to 2.0"},
			{Name: "effects", Type: "list", Description: "effects to attach, [{type, parameters}]"},
		},
		Fn: b.addClip,
	})
	r.RegisterOperation(Operation{
		Name:    "remove_clip",
		Summary: "Remove a clip from the timeline",
		Params:  []Param{{Name: "clip_id", Type: "string", Required: true}},
		Fn:      b.removeClip,
	})
	r.RegisterOperation(Operation{
		Name:    "trim_clip",
		Summary: "Change a clip's duration and/or start",
		Params: []Param{
			{Name: "clip_id", Type: "string", Required: true},
			{Name: "new_duration", Type: "number", Description: "seconds, > 0"},
			{Name: "new_start", Type: "number", Description: "seconds, >= 0"},
		},
		Fn: b.trimClip,
	})
	r.RegisterOperation(Operation{
		Name:    "apply_effect",
		Summary: "Attach an effect to a clip",
		Params: []Param{
			{Name: "clip_id", Type: "string", Required: true},
			{Name: "effect_type", Type: "string", Required: true, Description: "fade, crop, resize, ..."},
			{Name: "parameters", Type: "object", Default: "{}"},
		},
		Fn: b.applyEffect,
	})
	r.RegisterOperation(Operation{
		Name:    "set_volume",
		Summary: "Set the volume multiplier of a clip with audio",
		Params: []Param{
			{Name: "clip_id", Type: "string", Required: true},
			{Name: "volume", Type: "number", Required: true, Description: "0.0 to 2.0"},
		},
		Fn: b.setVolume,
	})
	r.RegisterOperation(Operation{
		Name:    "crop_vertical",
		Summary: "Attach a centred crop that converts a clip to a target aspect ratio",
		Params: []Param{
			{Name: "clip_id", Type: "string", Required: true},
			{Name: "target_aspect", Type: "string", Default: DefaultAspect, Description: "W:H"},
		},
		Fn: b.cropVertical,
	})
	r.RegisterOperation(Operation{
		Name:    "move_clip",
		Summary: "Move a clip in time and/or to another layer",
		Params: []Param{
			{Name: "clip_id", Type: "string", Required: true},
			{Name: "new_start", Type: "number", Description: "seconds, >= 0"},
			{Name: "new_layer", Type: "integer", Description: ">= 1"},
		},
		Fn: b.moveClip,
	})
}

type builtins struct {
	deps Dependencies
}

func (b builtins) addClip(_ context.Context, state project.State, args Args) (project.State, error) {
	kind, err := args.String("clip_type")
	if err != nil {
		return project.State{}, err
	}
	source, err := args.String("source")
	if err != nil {
		return project.State{}, err
	}
	duration, err := args.Float("duration")
	if err != nil {
		return project.State{}, err
	}
	spec := project.ClipSpec{Kind: kind, Source: source, Duration: duration}
	if start, err := args.OptionalFloat("start"); err != nil {
		return project.State{}, err
	} else if start != nil {
		spec.Start = *start
	}
	if spec.TrackLayer, err = args.OptionalInt("track_layer"); err != nil {
		return project.State{}, err
	}
	if spec.ID, err = args.OptionalString("clip_id", ""); err != nil {
		return project.State{}, err
	}
	if spec.Volume, err = args.OptionalFloat("volume"); err != nil {
		return project.State{}, err
	}
	if spec.Effects, err = args.Effects("effects"); err != nil {
		return project.State{}, err
	}
	clip, err := project.NewClip(spec, b.deps.Assets)
	if err != nil {
		return project.State{}, err
	}
	return state.AppendClip(clip)
}

func (b builtins) removeClip(_ context.Context, state project.State, args Args) (project.State, error) {
	id, err := args.String("clip_id")
	if err != nil {
		return project.State{}, err
	}
	return state.RemoveClip(id)
}

func (b builtins) trimClip(_ context.Context, state project.State, args Args) (project.State, error) {
	clip, err := clipArg(state, args)
	if err != nil {
		return project.State{}, err
	}
	duration, err := args.OptionalFloat("new_duration")
	if err != nil {
		return project.State{}, err
	}
	start, err := args.OptionalFloat("new_start")
	if err != nil {
		return project.State{}, err
	}
	if duration != nil {
		if err := project.ValidateDuration(*duration); err != nil {
			return project.State{}, services.Wrap(services.ErrValidation, "actions", "trim_clip", err.Error(), nil)
		}
		clip.Duration = *duration
	}
	if start != nil {
		if err := project.ValidateStart(*start); err != nil {
			return project.State{}, services.Wrap(services.ErrValidation, "actions", "trim_clip", err.Error(), nil)
		}
		clip.Start = *start
	}
	return state.ReplaceClip(clip)
}

func (b builtins) applyEffect(_ context.Context, state project.State, args Args) (project.State, error) {
	clip, err := clipArg(state, args)
	if err != nil {
		return project.State{}, err
	}
	effectType, err := args.String("effect_type")
	if err != nil {
		return project.State{}, err
	}
	params, err := args.Map("parameters")
	if err != nil {
		return project.State{}, err
	}
	effect, err := project.NewEffect(effectType, params)
	if err != nil {
		return project.State{}, err
	}
	return state.ReplaceClip(clip.WithEffect(effect))
}

func (b builtins) setVolume(_ context.Context, state project.State, args Args) (project.State, error) {
	clip, err := clipArg(state, args)
	if err != nil {
		return project.State{}, err
	}
	volume, err := args.Float("volume")
	if err != nil {
		return project.State{}, err
	}
	if !clip.Kind.HasAudio() {
		return project.State{}, services.Wrap(services.ErrValidation, "actions", "set_volume",
			fmt.Sprintf("%s clip %s has no audio", clip.Kind, clip.ID), nil)
	}
	if err := project.ValidateVolume(volume); err != nil {
		return project.State{}, services.Wrap(services.ErrValidation, "actions", "set_volume", err.Error(), nil)
	}
	clip.Volume = volume
	return state.ReplaceClip(clip)
}

func (b builtins) cropVertical(ctx context.Context, state project.State, args Args) (project.State, error) {
	clip, err := clipArg(state, args)
	if err != nil {
		return project.State{}, err
	}
	aspect, err := args.OptionalString("target_aspect", DefaultAspect)
	if err != nil {
		return project.State{}, err
	}
	aw, ah, err := ParseAspect(aspect)
	if err != nil {
		return project.State{}, err
	}
	if !clip.Kind.HasPicture() {
		return project.State{}, services.Wrap(services.ErrValidation, "actions", "crop_vertical",
			fmt.Sprintf("%s clip %s has no picture to crop", clip.Kind, clip.ID), nil)
	}
	width, height := state.Resolution.Width, state.Resolution.Height
	if clip.Kind != project.KindText && b.deps.Prober != nil {
		width, height, err = b.deps.Prober.Dimensions(ctx, clip.Source)
		if err != nil {
			return project.State{}, services.Wrap(services.ErrAsset, "actions", "crop_vertical",
				fmt.Sprintf("probe %s", clip.Source), err)
		}
	}
	window, err := CenteredCrop(width, height, aw, ah)
	if err != nil {
		return project.State{}, err
	}
	effect, err := project.NewEffect("crop", window.Parameters())
	if err != nil {
		return project.State{}, err
	}
	return state.ReplaceClip(clip.WithEffect(effect))
}

func (b builtins) moveClip(_ context.Context, state project.State, args Args) (project.State, error) {
	clip, err := clipArg(state, args)
	if err != nil {
		return project.State{}, err
	}
	start, err := args.OptionalFloat("new_start")
	if err != nil {
		return project.State{}, err
	}
	layer, err := args.OptionalInt("new_layer")
	if err != nil {
		return project.State{}, err
	}
	if start == nil && layer == nil {
		return project.State{}, services.Wrap(services.ErrValidation, "actions", "move_clip",
			"one of new_start or new_layer is required", nil)
	}
	if start != nil {
		if err := project.ValidateStart(*start); err != nil {
			return project.State{}, services.Wrap(services.ErrValidation, "actions", "move_clip", err.Error(), nil)
		}
		clip.Start = *start
	}
	if layer != nil {
		if *layer < 1 {
			return project.State{}, services.Wrap(services.ErrValidation, "actions", "move_clip",
				fmt.Sprintf("new_layer must be >= 1, got %d", *layer), nil)
		}
		clip.TrackLayer = *layer
	}
	return state.ReplaceClip(clip)
}

func clipArg(state project.State, args Args) (project.Clip, error) {
	id, err := args.String("clip_id")
	if err != nil {
		return project.Clip{}, err
	}
	return state.ClipByID(id)
}

// CropWindow is a rectangle inside a source frame.
type CropWindow struct {
	X, Y, Width, Height int
}

// Parameters returns the window as crop effect parameters.
func (w CropWindow) Parameters() map[string]any {
	return map[string]any{
		"x":      float64(w.X),
		"y":      float64(w.Y),
		"width":  float64(w.Width),
		"height": float64(w.Height),
	}
}

// ParseAspect parses a "W:H" ratio of positive integers.
func ParseAspect(value string) (float64, float64, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(value), ":")
	invalid := services.Wrap(services.ErrValidation, "actions", "target_aspect",
		fmt.Sprintf("expected W:H with positive integers, got %q", value), nil)
	if !ok {
		return 0, 0, invalid
	}
	w, errW := strconv.ParseUint(strings.TrimSpace(left), 10, 32)
	h, errH := strconv.ParseUint(strings.TrimSpace(right), 10, 32)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return 0, 0, invalid
	}
	return float64(w), float64(h), nil
}

// CenteredCrop returns the largest window of ratio aw:ah centred inside a
// width x height frame. Wider sources are cropped horizontally, taller ones
// vertically.
func CenteredCrop(width, height int, aw, ah float64) (CropWindow, error) {
	if width <= 0 || height <= 0 {
		return CropWindow{}, services.Wrap(services.ErrValidation, "actions", "crop",
			fmt.Sprintf("source size must be positive, got %dx%d", width, height), nil)
	}
	var window CropWindow
	if float64(width)/float64(height) > aw/ah {
		cropWidth := int(float64(height) * aw / ah)
		window = CropWindow{X: (width - cropWidth) / 2, Y: 0, Width: cropWidth, Height: height}
	} else {
		cropHeight := int(float64(width) * ah / aw)
		window = CropWindow{X: 0, Y: (height - cropHeight) / 2, Width: width, Height: cropHeight}
	}
	if window.Width < 1 || window.Height < 1 {
		return CropWindow{}, services.Wrap(services.ErrValidation, "actions", "crop",
			fmt.Sprintf("aspect %v:%v leaves no pixels of a %dx%d frame", aw, ah, width, height), nil)
	}
	return window, nil
}
