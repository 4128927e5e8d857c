// Package composition turns a project state into a render plan: clips grouped
// by layer, ordered in time, with their effect pipelines resolved and a
// back-to-front draw order.
package composition

import (
	"fmt"
	"sort"

	"moviely/internal/effects"
	"moviely/internal/project"
	"moviely/internal/services"
)

// Entry is one clip placed in the plan.
type Entry struct {
	Clip     project.Clip
	Layer    int
	Start    float64
	End      float64
	Pipeline effects.Pipeline
	// Insertion is the clip's position in the project's clip list.
	Insertion int
	// Z is the draw position; entries with a higher Z draw on top.
	Z int
}

// Layer groups the entries sharing a track layer.
type Layer struct {
	Index   int
	Entries []Entry
}

// Plan is the immutable result of planning a project.
type Plan struct {
	Name       string
	Resolution project.Resolution
	FPS        int
	Background project.Color
	Duration   float64
	Layers     []Layer
	drawOrder  []Entry
}

// Renderable reports whether the plan has anything to render.
func (p Plan) Renderable() bool {
	return len(p.drawOrder) > 0
}

// ClipCount returns the number of entries in the plan.
func (p Plan) ClipCount() int {
	return len(p.drawOrder)
}

// DrawOrder returns the entries from bottom-most to top-most.
func (p Plan) DrawOrder() []Entry {
	return append([]Entry(nil), p.drawOrder...)
}

// Entries returns the entries layer by layer, each layer ordered by start.
func (p Plan) Entries() []Entry {
	out := make([]Entry, 0, len(p.drawOrder))
	for _, layer := range p.Layers {
		out = append(out, layer.Entries...)
	}
	return out
}

// Build plans state. Effect pipelines are resolved here, so an unusable
// effect fails with services.ErrInvalidEffect before any rendering starts.
func Build(state project.State) (Plan, error) {
	plan := Plan{
		Name:       state.Name,
		Resolution: state.Resolution,
		FPS:        state.FPS,
		Background: state.Background,
		Duration:   state.TotalDuration(),
	}
	entries := make([]Entry, 0, len(state.Clips))
	for i, clip := range state.Clips {
		pipeline, err := effects.ResolveAll(clip.Effects, effects.Target{
			ClipID:     clip.ID,
			Duration:   clip.Duration,
			HasAudio:   clip.Kind.HasAudio(),
			HasPicture: clip.Kind.HasPicture(),
		})
		if err != nil {
			return Plan{}, err
		}
		entries = append(entries, Entry{
			Clip:      clip.Clone(),
			Layer:     clip.TrackLayer,
			Start:     clip.Start,
			End:       clip.End(),
			Pipeline:  pipeline,
			Insertion: i,
		})
	}

	// Z order: lower layers first; inside a layer, later insertion on top.
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Layer != entries[b].Layer {
			return entries[a].Layer < entries[b].Layer
		}
		return entries[a].Insertion < entries[b].Insertion
	})
	for z := range entries {
		entries[z].Z = z
	}
	plan.drawOrder = append([]Entry(nil), entries...)

	byTime := append([]Entry(nil), entries...)
	sort.SliceStable(byTime, func(a, b int) bool {
		if byTime[a].Layer != byTime[b].Layer {
			return byTime[a].Layer < byTime[b].Layer
		}
		if byTime[a].Start != byTime[b].Start {
			return byTime[a].Start < byTime[b].Start
		}
		return byTime[a].Insertion < byTime[b].Insertion
	})
	for _, entry := range byTime {
		n := len(plan.Layers)
		if n == 0 || plan.Layers[n-1].Index != entry.Layer {
			plan.Layers = append(plan.Layers, Layer{Index: entry.Layer})
			n++
		}
		plan.Layers[n-1].Entries = append(plan.Layers[n-1].Entries, entry)
	}
	return plan, nil
}

// Require returns the plan for state or services.ErrEmptyProject when there
// is nothing to render.
func Require(state project.State) (Plan, error) {
	plan, err := Build(state)
	if err != nil {
		return Plan{}, err
	}
	if !plan.Renderable() {
		return Plan{}, services.Wrap(services.ErrEmptyProject, "composition", "plan",
			fmt.Sprintf("project %q has no clips", state.Name), nil)
	}
	return plan, nil
}

// ActiveAt returns the entries visible at time t in draw order.
func (p Plan) ActiveAt(t float64) []Entry {
	var out []Entry
	for _, entry := range p.drawOrder {
		if entry.Start <= t && t < entry.End {
			out = append(out, entry)
		}
	}
	return out
}
