// Package effects resolves clip effects into ffmpeg filter fragments. Each
// effect type has a schema describing its parameters; anything the schema
// rejects fails with services.ErrInvalidEffect.
package effects

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"moviely/internal/project"
	"moviely/internal/services"
)

// Target describes the clip an effect is attached to.
type Target struct {
	ClipID     string
	Duration   float64
	HasAudio   bool
	HasPicture bool
}

// Stage is one resolved effect.
type Stage struct {
	Type   string
	Params map[string]float64
	Video  []string
	Audio  []string
	// Sized is set when the stage fixes the output frame size, which disables
	// the default scale-to-fill step.
	Sized bool
}

// Pipeline is the ordered list of stages for one clip.
type Pipeline struct {
	Stages []Stage
}

// VideoFilters returns every video filter fragment in attachment order.
func (p Pipeline) VideoFilters() []string {
	var out []string
	for _, stage := range p.Stages {
		out = append(out, stage.Video...)
	}
	return out
}

// AudioFilters returns every audio filter fragment in attachment order.
func (p Pipeline) AudioFilters() []string {
	var out []string
	for _, stage := range p.Stages {
		out = append(out, stage.Audio...)
	}
	return out
}

// Sized reports whether any stage fixes the frame size.
func (p Pipeline) Sized() bool {
	for _, stage := range p.Stages {
		if stage.Sized {
			return true
		}
	}
	return false
}

// Types lists the supported effect types.
func Types() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether effectType has a schema.
func Supported(effectType string) bool {
	_, ok := schemas[effectType]
	return ok
}

// Resolve validates one effect against its schema and builds its stage.
func Resolve(effect project.Effect, target Target) (Stage, error) {
	s, ok := schemas[effect.Type]
	if !ok {
		return Stage{}, invalid(target, effect.Type, fmt.Sprintf("unknown effect type (supported: %s)", strings.Join(Types(), ", ")))
	}
	values, err := s.bind(effect.Parameters)
	if err != nil {
		return Stage{}, invalid(target, effect.Type, err.Error())
	}
	if s.check != nil {
		if err := s.check(values, target); err != nil {
			return Stage{}, invalid(target, effect.Type, err.Error())
		}
	}
	stage := s.build(values, target)
	stage.Type = effect.Type
	stage.Params = values
	return stage, nil
}

// ResolveAll resolves effects in attachment order. The first failure aborts.
func ResolveAll(list []project.Effect, target Target) (Pipeline, error) {
	pipeline := Pipeline{Stages: make([]Stage, 0, len(list))}
	for _, effect := range list {
		stage, err := Resolve(effect, target)
		if err != nil {
			return Pipeline{}, err
		}
		pipeline.Stages = append(pipeline.Stages, stage)
	}
	return pipeline, nil
}

func invalid(target Target, effectType, message string) error {
	op := "effect " + effectType
	if target.ClipID != "" {
		op = fmt.Sprintf("clip %s effect %s", target.ClipID, effectType)
	}
	return services.Wrap(services.ErrInvalidEffect, "effects", op, message, nil)
}

type bound int

const (
	anyValue bound = iota
	nonNegative
	positive
)

type param struct {
	required bool
	def      float64
	bound    bound
}

type schema struct {
	params map[string]param
	check  func(values map[string]float64, target Target) error
	build  func(values map[string]float64, target Target) Stage
}

func (s schema) bind(raw map[string]any) (map[string]float64, error) {
	for key := range raw {
		if _, ok := s.params[key]; !ok {
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
	}
	values := make(map[string]float64, len(s.params))
	for name, p := range s.params {
		rawValue, present := raw[name]
		if !present || rawValue == nil {
			if p.required {
				return nil, fmt.Errorf("parameter %q is required", name)
			}
			values[name] = p.def
			continue
		}
		f, ok := rawValue.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("parameter %q must be a finite number, got %v", name, rawValue)
		}
		switch p.bound {
		case nonNegative:
			if f < 0 {
				return nil, fmt.Errorf("parameter %q must be >= 0, got %v", name, f)
			}
		case positive:
			if f <= 0 {
				return nil, fmt.Errorf("parameter %q must be > 0, got %v", name, f)
			}
		}
		values[name] = f
	}
	return values, nil
}

var schemas = map[string]schema{
	"fade": {
		params: map[string]param{
			"fade_in":  {bound: nonNegative},
			"fade_out": {bound: nonNegative},
		},
		check: func(v map[string]float64, target Target) error {
			if target.Duration > 0 && v["fade_in"]+v["fade_out"] > target.Duration {
				return fmt.Errorf("fade_in + fade_out (%v) exceeds clip duration %v", v["fade_in"]+v["fade_out"], target.Duration)
			}
			return nil
		},
		build: buildFade,
	},
	"crop": {
		params: map[string]param{
			"x":      {bound: nonNegative},
			"y":      {bound: nonNegative},
			"width":  {required: true, bound: positive},
			"height": {required: true, bound: positive},
		},
		check: pictureOnly,
		build: func(v map[string]float64, _ Target) Stage {
			return Stage{Video: []string{fmt.Sprintf("crop=%s:%s:%s:%s",
				num(v["width"]), num(v["height"]), num(v["x"]), num(v["y"]))}}
		},
	},
	"resize": {
		params: map[string]param{
			"width":  {bound: nonNegative},
			"height": {bound: nonNegative},
		},
		check: func(v map[string]float64, target Target) error {
			if v["width"] == 0 && v["height"] == 0 {
				return fmt.Errorf("one of width or height is required")
			}
			return pictureOnly(v, target)
		},
		build: func(v map[string]float64, _ Target) Stage {
			w, h := "-2", "-2"
			if v["width"] > 0 {
				w = num(v["width"])
			}
			if v["height"] > 0 {
				h = num(v["height"])
			}
			return Stage{Video: []string{fmt.Sprintf("scale=%s:%s", w, h)}, Sized: true}
		},
	},
}

func pictureOnly(_ map[string]float64, target Target) error {
	if !target.HasPicture {
		return fmt.Errorf("clip has no picture")
	}
	return nil
}

func buildFade(v map[string]float64, target Target) Stage {
	var stage Stage
	if in := v["fade_in"]; in > 0 {
		if target.HasPicture {
			stage.Video = append(stage.Video, fmt.Sprintf("fade=t=in:st=0:d=%s:alpha=1", num(in)))
		}
		if target.HasAudio {
			stage.Audio = append(stage.Audio, fmt.Sprintf("afade=t=in:st=0:d=%s", num(in)))
		}
	}
	if out := v["fade_out"]; out > 0 {
		start := math.Max(target.Duration-out, 0)
		if target.HasPicture {
			stage.Video = append(stage.Video, fmt.Sprintf("fade=t=out:st=%s:d=%s:alpha=1", num(start), num(out)))
		}
		if target.HasAudio {
			stage.Audio = append(stage.Audio, fmt.Sprintf("afade=t=out:st=%s:d=%s", num(start), num(out)))
		}
	}
	return stage
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
