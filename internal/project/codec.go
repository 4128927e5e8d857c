package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"moviely/internal/services"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://moviely.local/schema/project.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("load project schema: %w", err)
	}
	return c.Compile(schemaURL)
})

type document struct {
	Name            string         `json:"name"`
	Resolution      []float64      `json:"resolution"`
	FPS             *float64       `json:"fps,omitempty"`
	BackgroundColor []float64      `json:"background_color,omitempty"`
	Clips           []clipDocument `json:"clips"`
}

type clipDocument struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Source     string   `json:"source"`
	Duration   float64  `json:"duration"`
	Start      float64  `json:"start"`
	TrackLayer *float64 `json:"track_layer,omitempty"`
	Effects    []Effect `json:"effects"`
	Volume     *float64 `json:"volume,omitempty"`
}

type persistedState struct {
	Name            string          `json:"name"`
	Resolution      [2]int          `json:"resolution"`
	FPS             int             `json:"fps"`
	BackgroundColor [3]int          `json:"background_color"`
	Clips           []persistedClip `json:"clips"`
}

type persistedClip struct {
	ID         string   `json:"id"`
	Type       Kind     `json:"type"`
	Source     string   `json:"source"`
	Duration   float64  `json:"duration"`
	Start      float64  `json:"start"`
	TrackLayer int      `json:"track_layer"`
	Effects    []Effect `json:"effects"`
	Volume     float64  `json:"volume"`
}

// Marshal encodes state in the persisted document layout.
func Marshal(state State) ([]byte, error) {
	doc := persistedState{
		Name:            state.Name,
		Resolution:      [2]int{state.Resolution.Width, state.Resolution.Height},
		FPS:             state.FPS,
		BackgroundColor: [3]int{state.Background.R, state.Background.G, state.Background.B},
		Clips:           make([]persistedClip, 0, len(state.Clips)),
	}
	for _, clip := range state.Clips {
		effects := make([]Effect, len(clip.Effects))
		for i, effect := range clip.Effects {
			effects[i] = effect.Clone()
		}
		doc.Clips = append(doc.Clips, persistedClip{
			ID:         clip.ID,
			Type:       clip.Kind,
			Source:     clip.Source,
			Duration:   clip.Duration,
			Start:      clip.Start,
			TrackLayer: clip.TrackLayer,
			Effects:    effects,
			Volume:     clip.Volume,
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "encode", "marshal project", err)
	}
	return data, nil
}

// Decode parses a persisted document, checks it against the project schema
// and rebuilds the state through the validating constructors. Absent optional
// fields take their defaults.
func Decode(data []byte, assets AssetChecker) (State, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "project", "decode", "invalid JSON", err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return State{}, services.Wrap(services.ErrConfiguration, "project", "decode", "compile schema", err)
	}
	if err := schema.Validate(raw); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "project", "decode", "document does not match schema", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, services.Wrap(services.ErrValidation, "project", "decode", "invalid document", err)
	}
	settings := Settings{
		Name:       doc.Name,
		Resolution: Resolution{Width: int(doc.Resolution[0]), Height: int(doc.Resolution[1])},
		FPS:        DefaultFPS,
	}
	if doc.FPS != nil {
		settings.FPS = int(*doc.FPS)
	}
	if len(doc.BackgroundColor) == 3 {
		settings.Background = Color{
			R: int(doc.BackgroundColor[0]),
			G: int(doc.BackgroundColor[1]),
			B: int(doc.BackgroundColor[2]),
		}
	}
	if err := ValidateSettings(settings); err != nil {
		return State{}, err
	}

	clips := make([]Clip, 0, len(doc.Clips))
	for _, item := range doc.Clips {
		spec := ClipSpec{
			ID:       item.ID,
			Kind:     item.Type,
			Source:   item.Source,
			Duration: item.Duration,
			Start:    item.Start,
			Volume:   item.Volume,
			Effects:  item.Effects,
		}
		if item.TrackLayer != nil {
			layer := int(*item.TrackLayer)
			spec.TrackLayer = &layer
		}
		clip, err := NewClip(spec, assets)
		if err != nil {
			return State{}, err
		}
		clips = append(clips, clip)
	}
	return NewWithClips(settings, clips)
}
