package editor

import (
	"sort"

	"moviely/internal/composition"
	"moviely/internal/project"
	"moviely/internal/services"
)

const sourcePreviewLimit = 50

// ClipInfo is a display summary of one clip.
type ClipInfo struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Source   string   `json:"source"`
	Start    float64  `json:"start"`
	Duration float64  `json:"duration"`
	Volume   float64  `json:"volume"`
	Effects  []string `json:"effects"`
}

// LayerInfo groups clips drawn on one track layer.
type LayerInfo struct {
	Layer    int        `json:"layer"`
	Duration float64    `json:"duration"`
	Clips    []ClipInfo `json:"clips"`
}

// Info summarises a project.
type Info struct {
	Name          string      `json:"name"`
	Resolution    [2]int      `json:"resolution"`
	FPS           int         `json:"fps"`
	Background    [3]int      `json:"background_color"`
	TotalDuration float64     `json:"total_duration"`
	ClipCount     int         `json:"clip_count"`
	Layers        []LayerInfo `json:"layers"`
}

// Describe summarises state, grouping clips by layer and ordering them by
// start time.
func Describe(state project.State) Info {
	info := Info{
		Name:          state.Name,
		Resolution:    [2]int{state.Resolution.Width, state.Resolution.Height},
		FPS:           state.FPS,
		Background:    [3]int{state.Background.R, state.Background.G, state.Background.B},
		TotalDuration: state.TotalDuration(),
		ClipCount:     state.ClipCount(),
		Layers:        []LayerInfo{},
	}
	byLayer := map[int]*LayerInfo{}
	for _, clip := range state.Clips {
		layer, ok := byLayer[clip.TrackLayer]
		if !ok {
			layer = &LayerInfo{Layer: clip.TrackLayer}
			byLayer[clip.TrackLayer] = layer
		}
		effects := make([]string, 0, len(clip.Effects))
		for _, effect := range clip.Effects {
			effects = append(effects, effect.Type)
		}
		layer.Clips = append(layer.Clips, ClipInfo{
			ID:       clip.ID,
			Type:     string(clip.Kind),
			Source:   previewSource(clip.Source),
			Start:    clip.Start,
			Duration: clip.Duration,
			Volume:   clip.Volume,
			Effects:  effects,
		})
		layer.Duration = max(layer.Duration, clip.End())
	}
	for _, layer := range byLayer {
		sort.SliceStable(layer.Clips, func(i, j int) bool { return layer.Clips[i].Start < layer.Clips[j].Start })
		info.Layers = append(info.Layers, *layer)
	}
	sort.Slice(info.Layers, func(i, j int) bool { return info.Layers[i].Layer < info.Layers[j].Layer })
	return info
}

func previewSource(source string) string {
	runes := []rune(source)
	if len(runes) <= sourcePreviewLimit {
		return source
	}
	return string(runes[:sourcePreviewLimit]) + "..."
}

// PlanInfo is a serialisable view of a composition plan.
type PlanInfo struct {
	Name       string      `json:"name"`
	Duration   float64     `json:"duration"`
	Renderable bool        `json:"renderable"`
	Entries    []PlanEntry `json:"entries"`
}

// PlanEntry is one clip placement in a plan.
type PlanEntry struct {
	ClipID       string   `json:"clip_id"`
	Type         string   `json:"type"`
	Layer        int      `json:"layer"`
	Z            int      `json:"z"`
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	VideoFilters []string `json:"video_filters,omitempty"`
	AudioFilters []string `json:"audio_filters,omitempty"`
}

// DescribePlan flattens plan into draw order.
func DescribePlan(plan composition.Plan) PlanInfo {
	out := PlanInfo{Name: plan.Name, Duration: plan.Duration, Renderable: plan.Renderable(), Entries: []PlanEntry{}}
	for _, entry := range plan.DrawOrder() {
		out.Entries = append(out.Entries, PlanEntry{
			ClipID:       entry.Clip.ID,
			Type:         string(entry.Clip.Kind),
			Layer:        entry.Layer,
			Z:            entry.Z,
			Start:        entry.Start,
			End:          entry.End,
			VideoFilters: entry.Pipeline.VideoFilters(),
			AudioFilters: entry.Pipeline.AudioFilters(),
		})
	}
	return out
}

func alreadyExists(id string) error {
	return services.Wrap(services.ErrValidation, "editor", "create", "project "+id+" already exists", nil)
}
